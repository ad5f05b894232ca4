package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/stats"
)

func ListCalories(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		w, err := stats.ParseWindow(c.Query("window"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid window")
			return
		}
		entries, err := service.ListCalories(c.Request.Context(), app.Store(), user, w, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch calorie entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries), "window": w})
	}
}

func GetCalorie(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		e, err := service.GetCalorie(c.Request.Context(), app.Store(), auth.CurrentUser(c), id)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch calorie entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func PostCalorie(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.CalorieRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		e, err := service.CreateCalorie(c.Request.Context(), app.Store(), auth.CurrentUser(c), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save calorie entry")
			return
		}
		HandleCreated(c, app.Logger(), e)
	}
}

func PutCalorie(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		var body service.CalorieUpdate
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		e, err := service.UpdateCalorie(c.Request.Context(), app.Store(), auth.CurrentUser(c), id, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update calorie entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func DeleteCalorie(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		if err := service.DeleteCalorie(c.Request.Context(), app.Store(), auth.CurrentUser(c), id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete calorie entry")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": id}, nil)
	}
}

func CaloriesInRange(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.CaloriesInRange(c.Request.Context(), app.Store(), auth.CurrentUser(c), c.Param("start"), c.Param("end"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch calorie entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries)})
	}
}
