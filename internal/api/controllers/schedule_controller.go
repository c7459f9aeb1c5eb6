package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/itinerary"
	"tourplanner/internal/models/request_models"
	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type ScheduleController struct {
	scheduleService services.ScheduleServiceInterface
}

func NewScheduleController(scheduleService services.ScheduleServiceInterface) *ScheduleController {
	return &ScheduleController{
		scheduleService: scheduleService,
	}
}

// GenerateDaySchedule godoc
// @Summary Generate the schedule of a day
// @Description Sends the day's saved preferences to the recommendation provider. A placeholder schedule is returned when the provider fails.
// @Tags Schedules
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Success 200 {object} services.ScheduleResult
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /trips/{tripId}/days/{day}/schedule [post]
func (s *ScheduleController) GenerateDaySchedule(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	result, err := s.scheduleService.GenerateDaySchedule(c.Request.Context(), c.Param("tripId"), day)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	message := "Schedule generated successfully"
	if result.Schedule.Source == itinerary.SourceFallback {
		message = "Recommendation service unavailable, a placeholder schedule was created"
	}
	utils.RespondSuccess(c, result, message)
}

// GetDaySchedule godoc
// @Summary Get the schedule of a day
// @Tags Schedules
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Success 200 {object} itinerary.DaySchedule
// @Failure 404 {object} utils.APIResponse
// @Router /trips/{tripId}/days/{day}/schedule [get]
func (s *ScheduleController) GetDaySchedule(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	schedule, err := s.scheduleService.GetDaySchedule(c.Request.Context(), c.Param("tripId"), day)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, schedule, "Schedule fetched successfully")
}

// DeleteScheduleItem godoc
// @Summary Remove an item from a day
// @Tags Schedules
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Param itemId path string true "Item ID"
// @Success 200 {object} itinerary.DaySchedule
// @Router /trips/{tripId}/days/{day}/schedule/items/{itemId} [delete]
func (s *ScheduleController) DeleteScheduleItem(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	schedule, err := s.scheduleService.DeleteItem(c.Request.Context(), c.Param("tripId"), day, c.Param("itemId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, schedule, "Item removed")
}

// ReplaceScheduleItem godoc
// @Summary Swap the place of an item
// @Description Keeps the slot's time and type and replaces its place
// @Tags Schedules
// @Accept json
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Param itemId path string true "Item ID"
// @Param request body request_models.ReplaceItemRequest true "Replacement place"
// @Success 200 {object} itinerary.DaySchedule
// @Router /trips/{tripId}/days/{day}/schedule/items/{itemId} [put]
func (s *ScheduleController) ReplaceScheduleItem(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	var req request_models.ReplaceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Replacement name is required")
		return
	}

	schedule, err := s.scheduleService.ReplaceItem(c.Request.Context(), c.Param("tripId"), day, c.Param("itemId"), itinerary.Replacement{
		PlaceID: req.PlaceID,
		Name:    req.Name,
		Price:   req.Price,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, schedule, "Item replaced")
}

// GetProviderHistory godoc
// @Summary Archived provider exchanges of a trip
// @Description Admin only. Lists every recommendation request and response kept for the trip
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Param tripId path string true "Trip ID"
// @Success 200 {array} repositories.ProviderArchiveEntry
// @Router /trips/{tripId}/provider-history [get]
func (s *ScheduleController) GetProviderHistory(c *gin.Context) {
	entries, err := s.scheduleService.ProviderHistory(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, entries, "Provider history fetched successfully")
}
