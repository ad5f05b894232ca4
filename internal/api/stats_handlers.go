package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/stats"
)

const maxActivityLimit = 100

func GetStatistics(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		tf, err := stats.ParseTimeframe(c.Query("timeframe"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid timeframe")
			return
		}
		w, err := stats.ParseWindow(c.Query("window"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid window")
			return
		}
		st, err := service.StatisticsFor(c.Request.Context(), app.Store(), auth.CurrentUser(c), tf, w, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to compute statistics")
			return
		}
		HandleSuccess(c, app.Logger(), st, nil)
	}
}

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := service.DashboardFor(c.Request.Context(), app.Store(), auth.CurrentUser(c), goals(app.Config()), app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to build dashboard")
			return
		}
		HandleSuccess(c, app.Logger(), d, nil)
	}
}

func GetRecentActivity(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := stats.DefaultActivityLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxActivityLimit {
				HandleError(c, app.Logger(), fmt.Errorf("limit must be between 1 and %d", maxActivityLimit), 400, "Invalid limit")
				return
			}
			limit = n
		}
		items, err := service.RecentActivity(c.Request.Context(), app.Store(), auth.CurrentUser(c), limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch recent activity")
			return
		}
		HandleSuccess(c, app.Logger(), items, map[string]any{"limit": limit})
	}
}
