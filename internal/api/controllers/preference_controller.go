package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/itinerary"
	"tourplanner/internal/models/request_models"
	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type PreferenceController struct {
	preferenceService services.PreferenceServiceInterface
}

func NewPreferenceController(preferenceService services.PreferenceServiceInterface) *PreferenceController {
	return &PreferenceController{
		preferenceService: preferenceService,
	}
}

// GetDayCandidates godoc
// @Summary Get the candidate places of a day
// @Description Returns the saved candidates when they match the trip's destination, otherwise fetches them
// @Tags Preferences
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Success 200 {object} itinerary.DayPreferences
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /trips/{tripId}/days/{day}/candidates [get]
func (p *PreferenceController) GetDayCandidates(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	prefs, err := p.preferenceService.DayCandidates(c.Request.Context(), c.Param("tripId"), day)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, prefs, "Candidates fetched successfully")
}

// GetDayPreferences godoc
// @Summary Get saved preferences of a day
// @Tags Preferences
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Success 200 {object} itinerary.DayPreferences
// @Failure 404 {object} utils.APIResponse
// @Router /trips/{tripId}/days/{day}/preferences [get]
func (p *PreferenceController) GetDayPreferences(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}

	prefs, err := p.preferenceService.GetDayPreferences(c.Request.Context(), c.Param("tripId"), day)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, prefs, "Preferences fetched successfully")
}

// SaveDayPreferences godoc
// @Summary Save preferences of a day
// @Tags Preferences
// @Accept json
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Param request body request_models.SaveDayPreferencesRequest true "Candidates with like flags"
// @Success 200 {object} itinerary.DayPreferences
// @Router /trips/{tripId}/days/{day}/preferences [put]
func (p *PreferenceController) SaveDayPreferences(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	var req request_models.SaveDayPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "categorizedCandidates is required")
		return
	}

	prefs := &itinerary.DayPreferences{Day: day, Candidates: map[itinerary.Category][]itinerary.PlaceCandidate{}}
	for name, items := range req.Candidates {
		category, err := itinerary.ParseCategory(name)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		prefs.Candidates[category] = append(prefs.Candidates[category], items...)
	}

	saved, err := p.preferenceService.SaveDayPreferences(c.Request.Context(), c.Param("tripId"), prefs)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, saved, "Preferences saved successfully")
}

// TogglePreference godoc
// @Summary Like or dislike a candidate
// @Description Toggles one flag; turning a flag on clears the opposite one
// @Tags Preferences
// @Accept json
// @Produce json
// @Param tripId path string true "Trip ID"
// @Param day path int true "Day number"
// @Param request body request_models.TogglePreferenceRequest true "Category, item and like or dislike"
// @Success 200 {object} itinerary.PlaceCandidate
// @Router /trips/{tripId}/days/{day}/preferences/toggle [post]
func (p *PreferenceController) TogglePreference(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	var req request_models.TogglePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "category, itemId and type are required")
		return
	}
	category, err := itinerary.ParseCategory(req.Category)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	kind, err := itinerary.ParsePreferenceKind(req.Type)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	item, err := p.preferenceService.TogglePreference(c.Request.Context(), c.Param("tripId"), day, category, req.ItemID, kind)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, item, "Preference updated")
}
