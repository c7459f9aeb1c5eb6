package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/models/request_models"
	"tourplanner/internal/services"
	"tourplanner/pkg/utils"
)

type TourController struct {
	tourService services.TourServiceInterface
}

func NewTourController(tourService services.TourServiceInterface) *TourController {
	return &TourController{
		tourService: tourService,
	}
}

// FinalizeTour godoc
// @Summary Build the final tour
// @Description Requires a schedule for every day. Stores the tour and clears the trip's days.
// @Tags Tours
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 201 {object} response_models.TourResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Router /trips/{tripId}/finalize [post]
func (t *TourController) FinalizeTour(c *gin.Context) {
	tour, err := t.tourService.Finalize(c.Request.Context(), c.Param("tripId"), c.GetString("user_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondWithStatus(c, http.StatusCreated, tour, "Tour created successfully")
}

// GetTour godoc
// @Summary Get a tour
// @Tags Tours
// @Produce json
// @Param tourId path string true "Tour ID"
// @Success 200 {object} response_models.TourResponse
// @Failure 404 {object} utils.APIResponse
// @Router /tours/{tourId} [get]
func (t *TourController) GetTour(c *gin.Context) {
	tour, err := t.tourService.GetTour(c.Request.Context(), c.Param("tourId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tour, "Tour fetched successfully")
}

// ListMyTours godoc
// @Summary List the caller's tours
// @Tags Tours
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {array} response_models.TourSummary
// @Security BearerAuth
// @Router /tours [get]
func (t *TourController) ListMyTours(c *gin.Context) {
	page, pageSize, ok := pageParams(c)
	if !ok {
		return
	}

	tours, err := t.tourService.ListTours(c.Request.Context(), c.GetString("user_id"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tours, "Tours fetched successfully")
}

// DownloadTourPDF godoc
// @Summary Download a tour as PDF
// @Tags Tours
// @Produce application/pdf
// @Param tourId path string true "Tour ID"
// @Success 200 {file} binary
// @Router /tours/{tourId}/pdf [get]
func (t *TourController) DownloadTourPDF(c *gin.Context) {
	tourID := c.Param("tourId")
	raw, err := t.tourService.ExportPDF(c.Request.Context(), tourID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="tour-%s.pdf"`, tourID))
	c.Data(http.StatusOK, "application/pdf", raw)
}

// PayTour godoc
// @Summary Mark a tour as paid
// @Description Repeating the call returns the stored payment
// @Tags Tours
// @Accept json
// @Produce json
// @Param tourId path string true "Tour ID"
// @Param request body request_models.PaymentRequest true "Payment method"
// @Success 200 {object} response_models.PaymentResponse
// @Success 201 {object} response_models.PaymentResponse
// @Failure 401 {object} utils.APIResponse
// @Router /tours/{tourId}/payment [post]
func (t *TourController) PayTour(c *gin.Context) {
	var req request_models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Payment method is required")
		return
	}

	payment, alreadyPaid, err := t.tourService.RecordPayment(c.Request.Context(), c.Param("tourId"), c.GetString("user_id"), req.Method)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if alreadyPaid {
		utils.RespondSuccess(c, payment, "Tour was already paid")
		return
	}
	utils.RespondWithStatus(c, http.StatusCreated, payment, "Payment recorded")
}

// GetTourPayment godoc
// @Summary Get the payment status of a tour
// @Tags Tours
// @Produce json
// @Param tourId path string true "Tour ID"
// @Success 200 {object} response_models.PaymentResponse
// @Router /tours/{tourId}/payment [get]
func (t *TourController) GetTourPayment(c *gin.Context) {
	payment, err := t.tourService.GetPayment(c.Request.Context(), c.Param("tourId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, payment, "Payment fetched successfully")
}
