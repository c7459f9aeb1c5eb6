package utils

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// detailer is implemented by errors that carry structured data for the client, such
// as the rejected fields of a form.
type detailer interface {
	Details() any
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusOK, data, message)
}

func RespondWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

type errorMapping struct {
	target  error
	code    int
	message string
}

// An empty message means the error's own text is safe to show.
var errorMappings = []errorMapping{
	{ErrInvalidInput, http.StatusBadRequest, ""},
	{ErrDayOutOfRange, http.StatusBadRequest, ""},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{ErrTripNotFound, http.StatusNotFound, "Trip not found"},
	{ErrTourNotFound, http.StatusNotFound, "Tour not found"},
	{ErrItemNotFound, http.StatusNotFound, ""},
	{ErrPlaceNotFound, http.StatusNotFound, ""},
	{ErrNoPreferences, http.StatusNotFound, "Preferences for this day have not been saved"},
	{ErrNoSchedule, http.StatusNotFound, ""},
	{ErrNavigationBlocked, http.StatusConflict, ""},
	{ErrGenerationInProgress, http.StatusConflict, "A schedule for this day is already being generated"},
	{ErrFinalizeInProgress, http.StatusConflict, "This trip is already being finalized"},
	{ErrStaleGeneration, http.StatusConflict, "The trip changed while the schedule was generated, please try again"},
	{ErrIncompleteTrip, http.StatusUnprocessableEntity, ""},
	{ErrProviderUnavailable, http.StatusBadGateway, "Recommendation service is unavailable"},
	{ErrMalformedProviderResponse, http.StatusBadGateway, "Recommendation service returned an invalid response"},
	{ErrDatabaseError, http.StatusInternalServerError, "Internal server error"},
	{context.Canceled, StatusClientClosedRequest, "Request cancelled"},
}

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// HandleServiceError maps a service error onto the response envelope. Unknown errors
// are logged and reported as 500.
func HandleServiceError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.code >= http.StatusInternalServerError {
			zap.L().Error("Request failed",
				zap.String("trace_id", traceID(c)),
				zap.String("path", c.FullPath()),
				zap.Error(err))
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		resp := APIResponse{
			Status:  "error",
			Code:    m.code,
			Message: message,
			TraceID: traceID(c),
		}
		var d detailer
		if errors.As(err, &d) {
			resp.Data = d.Details()
		}
		c.JSON(m.code, resp)
		return
	}

	zap.L().Error("Unknown error",
		zap.String("trace_id", traceID(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	RespondError(c, http.StatusInternalServerError, "Internal server error")
}
