package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type HealthController struct {
	healthService services.HealthServiceInterface
}

func NewHealthController(healthService services.HealthServiceInterface) *HealthController {
	return &HealthController{healthService: healthService}
}

// Health godoc
// @Summary Service health
// @Description ok, degraded when the recommendation provider is down, error when storage is down
// @Tags Health
// @Produce json
// @Success 200 {object} response_models.HealthResponse
// @Failure 503 {object} response_models.HealthResponse
// @Router /health [get]
func (h *HealthController) Health(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())
	code := http.StatusOK
	if report.Status == "error" {
		code = http.StatusServiceUnavailable
	}
	utils.RespondWithStatus(c, code, report, report.Status)
}
