package handler

import (
	"net/http"
	"time"

	"portfee/internal/middleware"
	"portfee/internal/service"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	now               func() time.Time
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, now: time.Now}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics", h.GetStatistics)
}

// @Summary      Get tax statistics
// @Description  Sums the stored taxes of the forms submitted in a window, overall, per status and per port
// @Tags         statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339), default first day of the current month"
// @Param        end_date   query string false "End Date (RFC3339, exclusive), default now"
// @Success      200 {object} response.Response{data=model.TaxStatistics}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      401 {object} response.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	startDateStr := c.Query("start_date")
	endDateStr := c.Query("end_date")

	var startDate, endDate time.Time
	var err error

	// Default to the current month
	now := h.now().UTC()
	if startDateStr == "" {
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		startDate, err = time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			badRequest(c, "invalid start_date format, expected RFC3339")
			return
		}
	}

	if endDateStr == "" {
		endDate = now
	} else {
		endDate, err = time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			badRequest(c, "invalid end_date format, expected RFC3339")
			return
		}
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), middleware.CurrentUser(c), startDate, endDate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
