package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourplanner/internal/api/controllers"
	"tourplanner/internal/config"
	"tourplanner/pkg/middleware"
	"tourplanner/pkg/utils"
)

type RouterParams struct {
	fx.In

	Config      config.Config
	Logger      *zap.Logger
	Tokens      *utils.TokenManager
	Trips       *controllers.TripController
	Preferences *controllers.PreferenceController
	Schedules   *controllers.ScheduleController
	Flights     *controllers.FlightController
	Cities      *controllers.CityController
	Tours       *controllers.TourController
	Health      *controllers.HealthController
}

func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(p.Config.Telemetry.ServiceName))
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Logger.Named("http")))
	r.Use(middleware.CORSMiddleware(p.Config.Server.CORSOrigins))

	RegisterRoutes(r, p)
	return r
}

func RegisterRoutes(r *gin.Engine, p RouterParams) {
	r.GET("/health", p.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, "Route not found")
	})

	optionalAuth := middleware.OptionalJWTMiddleware(p.Tokens)
	requiredAuth := middleware.JWTAuthMiddleware(p.Tokens)
	scheduleLimit := middleware.NewRateLimiter(p.Config.RateLimit.SchedulePerMinute, p.Config.RateLimit.Burst)

	citiesGroup := r.Group("/cities")
	citiesGroup.GET("", p.Cities.ListCities)
	citiesGroup.GET("/resolve", p.Cities.ResolveCity)
	citiesGroup.POST("/sync", requiredAuth, middleware.RoleMiddleware("admin"), p.Cities.SyncCities)

	r.GET("/flights/search", p.Flights.SearchFlights)

	tripsGroup := r.Group("/trips", optionalAuth)
	tripsGroup.POST("", p.Trips.CreateTrip)
	tripsGroup.POST("/import", p.Trips.ImportTrip)
	tripsGroup.GET("/:tripId", p.Trips.GetTrip)
	tripsGroup.DELETE("/:tripId", p.Trips.DeleteTrip)
	tripsGroup.PUT("/:tripId/flights", p.Trips.SelectFlights)
	tripsGroup.PUT("/:tripId/current-day", p.Trips.SetCurrentDay)
	tripsGroup.POST("/:tripId/clear", p.Trips.ClearTrip)
	tripsGroup.GET("/:tripId/export", p.Trips.ExportTrip)
	tripsGroup.POST("/:tripId/finalize", p.Tours.FinalizeTour)
	tripsGroup.GET("/:tripId/provider-history", requiredAuth, middleware.RoleMiddleware("admin"), p.Schedules.GetProviderHistory)

	daysGroup := tripsGroup.Group("/:tripId/days/:day")
	daysGroup.GET("/candidates", p.Preferences.GetDayCandidates)
	daysGroup.GET("/preferences", p.Preferences.GetDayPreferences)
	daysGroup.PUT("/preferences", p.Preferences.SaveDayPreferences)
	daysGroup.POST("/preferences/toggle", p.Preferences.TogglePreference)
	daysGroup.POST("/schedule", scheduleLimit.Limit(), p.Schedules.GenerateDaySchedule)
	daysGroup.GET("/schedule", p.Schedules.GetDaySchedule)
	daysGroup.DELETE("/schedule/items/:itemId", p.Schedules.DeleteScheduleItem)
	daysGroup.PUT("/schedule/items/:itemId", p.Schedules.ReplaceScheduleItem)

	toursGroup := r.Group("/tours", optionalAuth)
	toursGroup.GET("", requiredAuth, p.Tours.ListMyTours)
	toursGroup.GET("/:tourId", p.Tours.GetTour)
	toursGroup.GET("/:tourId/pdf", p.Tours.DownloadTourPDF)
	toursGroup.GET("/:tourId/payment", p.Tours.GetTourPayment)
	toursGroup.POST("/:tourId/payment", p.Tours.PayTour)
}
