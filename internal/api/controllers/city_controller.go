package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type CityController struct {
	cityService services.CityServiceInterface
}

func NewCityController(cityService services.CityServiceInterface) *CityController {
	return &CityController{
		cityService: cityService,
	}
}

// ListCities godoc
// @Summary List destination cities
// @Tags Cities
// @Produce json
// @Param limit query int false "Maximum number of cities (default: 100, max: 500)"
// @Success 200 {array} response_models.CityResponse
// @Router /cities [get]
func (ct *CityController) ListCities(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 500 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid limit (must be 1-500)")
		return
	}

	cities, err := ct.cityService.List(c.Request.Context(), limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, cities, "Cities fetched successfully")
}

// ResolveCity godoc
// @Summary Resolve a city name to its provider id
// @Tags Cities
// @Produce json
// @Param name query string true "City name"
// @Success 200 {object} services.CityResolution
// @Router /cities/resolve [get]
func (ct *CityController) ResolveCity(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, "name is required")
		return
	}

	res, err := ct.cityService.Resolve(c.Request.Context(), name)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, res, "City resolved")
}

// SyncCities godoc
// @Summary Copy the provider's city list into the database
// @Tags Cities
// @Produce json
// @Param limit query int false "Number of cities to fetch (default: 500)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /cities/sync [post]
func (ct *CityController) SyncCities(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "500"))
	if err != nil || limit < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid limit")
		return
	}

	n, err := ct.cityService.Sync(c.Request.Context(), limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"synced": n}, "Cities synchronized")
}
