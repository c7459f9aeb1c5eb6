package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourplanner/pkg/utils"
)

// dayParam reads the :day path segment, responding 400 when it is not a positive number.
func dayParam(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Day must be a positive number")
		return 0, false
	}
	return day, true
}

func pageParams(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return 0, 0, false
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size (must be 1-100)")
		return 0, 0, false
	}
	return page, pageSize, true
}
