package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmoapp/ritmo/internal/adapters/handler/http/middleware"
	"github.com/ritmoapp/ritmo/internal/core/domain"
	"github.com/ritmoapp/ritmo/internal/core/services"
)

const (
	defaultWindowDays = 30
	maxDaysRange      = 366
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/habits/:id/stats", h.GetHabitStats)
	r.GET("/stats/overview", h.GetOverview)
}

// parseStatsQuery resolves the requested window. Either explicit
// start_date/end_date bounds or a rolling window of N days ending at
// as_of (default: today). Malformed input returns ok=false with the
// response already written.
func parseStatsQuery(c *gin.Context) (domain.StatsInput, bool) {
	var input domain.StatsInput

	asOf := time.Now().UTC()
	if s := c.Query("as_of"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of format, expected YYYY-MM-DD"})
			return input, false
		}
		asOf = parsed
	}

	windowDays := defaultWindowDays
	if s := c.Query("window"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive number of days"})
			return input, false
		}
		windowDays = n
	}

	endDate := asOf
	startDate := endDate.AddDate(0, 0, -(windowDays - 1))

	if s := c.Query("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return input, false
		}
		endDate = parsed
		startDate = endDate.AddDate(0, 0, -(windowDays - 1))
	}
	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return input, false
		}
		startDate = parsed
	}

	if startDate.After(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return input, false
	}

	if endDate.Sub(startDate).Hours()/24 > maxDaysRange {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return input, false
	}

	input.StartDate = startDate
	input.EndDate = endDate
	input.AsOf = asOf
	return input, true
}

func (h *StatsHandler) GetHabitStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	input, ok := parseStatsQuery(c)
	if !ok {
		return
	}
	input.UserID = userID
	input.HabitID = c.Param("id")

	result, err := h.svc.GetHabitStats(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) GetOverview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	input, ok := parseStatsQuery(c)
	if !ok {
		return
	}
	input.UserID = userID

	overview, err := h.svc.GetOverview(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
