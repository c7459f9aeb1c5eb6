package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/itinerary"
	"tourplanner/internal/models/request_models"
	"tourplanner/internal/models/response_models"
	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type TripController struct {
	tripService services.TripServiceInterface
}

func NewTripController(tripService services.TripServiceInterface) *TripController {
	return &TripController{
		tripService: tripService,
	}
}

// CreateTrip godoc
// @Summary Start a trip
// @Description Validate the search form and open a new trip session
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body request_models.CreateTripRequest true "Search form"
// @Success 201 {object} response_models.TripResponse
// @Failure 400 {object} utils.APIResponse
// @Router /trips [post]
func (t *TripController) CreateTrip(c *gin.Context) {
	var req request_models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := t.tripService.Create(c.Request.Context(), req.ToInput(), c.GetString("user_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, response_models.NewTripResponse(session), "Trip created successfully")
}

// GetTrip godoc
// @Summary Get a trip
// @Tags Trips
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 200 {object} response_models.TripResponse
// @Failure 404 {object} utils.APIResponse
// @Router /trips/{tripId} [get]
func (t *TripController) GetTrip(c *gin.Context) {
	session, err := t.tripService.Get(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewTripResponse(session), "Trip fetched successfully")
}

// SelectFlights godoc
// @Summary Choose flights
// @Description Store the chosen departure and return flights and open the preference step
// @Tags Trips
// @Accept json
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param request body request_models.SelectFlightsRequest true "Flights"
// @Success 200 {object} response_models.TripResponse
// @Router /trips/{tripId}/flights [put]
func (t *TripController) SelectFlights(c *gin.Context) {
	var req request_models.SelectFlightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := t.tripService.SelectFlights(c.Request.Context(), c.Param("tripId"), itinerary.FlightSelection{
		Departure: req.Departure,
		Return:    req.Return,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewTripResponse(session), "Flights selected successfully")
}

// SetCurrentDay godoc
// @Summary Navigate to a day
// @Description Any started day and the first day after them can be opened
// @Tags Trips
// @Accept json
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param request body request_models.SetCurrentDayRequest true "Day"
// @Success 200 {object} response_models.TripResponse
// @Failure 409 {object} utils.APIResponse
// @Router /trips/{tripId}/current-day [put]
func (t *TripController) SetCurrentDay(c *gin.Context) {
	var req request_models.SetCurrentDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Day must be a positive number")
		return
	}

	session, err := t.tripService.SetCurrentDay(c.Request.Context(), c.Param("tripId"), req.Day)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewTripResponse(session), "Current day updated")
}

// ClearTrip godoc
// @Summary Clear all days
// @Description Drop every day's preferences and schedule, keeping the trip
// @Tags Trips
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 200 {object} response_models.TripResponse
// @Router /trips/{tripId}/clear [post]
func (t *TripController) ClearTrip(c *gin.Context) {
	session, err := t.tripService.ClearAll(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewTripResponse(session), "Trip progress cleared")
}

// ExportTrip godoc
// @Summary Export a trip
// @Tags Trips
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 200 {object} itinerary.TripExport
// @Router /trips/{tripId}/export [get]
func (t *TripController) ExportTrip(c *gin.Context) {
	export, err := t.tripService.Export(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.json"`, export.Session.ID))
	c.JSON(http.StatusOK, export)
}

// ImportTrip godoc
// @Summary Import a trip
// @Description Restore a trip from an export document
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body itinerary.TripExport true "Export document"
// @Success 200 {object} response_models.TripResponse
// @Router /trips/import [post]
func (t *TripController) ImportTrip(c *gin.Context) {
	var export itinerary.TripExport
	if err := c.ShouldBindJSON(&export); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid export document")
		return
	}

	session, err := t.tripService.Import(c.Request.Context(), export, c.GetString("user_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.NewTripResponse(session), "Trip imported successfully")
}

// DeleteTrip godoc
// @Summary Delete a trip
// @Tags Trips
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 200 {object} utils.APIResponse
// @Router /trips/{tripId} [delete]
func (t *TripController) DeleteTrip(c *gin.Context) {
	if err := t.tripService.Delete(c.Request.Context(), c.Param("tripId")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Trip deleted successfully")
}
