package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/models/request_models"
	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type FlightController struct {
	flightService services.FlightServiceInterface
}

func NewFlightController(flightService services.FlightServiceInterface) *FlightController {
	return &FlightController{
		flightService: flightService,
	}
}

// SearchFlights godoc
// @Summary Search flights
// @Description Outbound flights and, when return_date is set, return flights
// @Tags Flights
// @Produce json
// @Param departure_city query string true "Departure city"
// @Param arrival_city query string true "Arrival city"
// @Param departure_date query string true "YYYY-MM-DD"
// @Param return_date query string false "YYYY-MM-DD"
// @Success 200 {object} services.FlightSearchResult
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /flights/search [get]
func (f *FlightController) SearchFlights(c *gin.Context) {
	var req request_models.FlightSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query")
		return
	}

	result, err := f.flightService.Search(c.Request.Context(), services.FlightSearchInput{
		DepartureCity: req.DepartureCity,
		ArrivalCity:   req.ArrivalCity,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Flights fetched successfully")
}
