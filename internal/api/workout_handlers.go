package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/stats"
)

func ListWorkouts(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		w, err := stats.ParseWindow(c.Query("window"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid window")
			return
		}
		entries, err := service.ListWorkouts(c.Request.Context(), app.Store(), user, w, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch workouts")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries), "window": w})
	}
}

func GetWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		e, err := service.GetWorkout(c.Request.Context(), app.Store(), auth.CurrentUser(c), id)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch workout")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func PostWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.WorkoutRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		e, err := service.CreateWorkout(c.Request.Context(), app.Store(), auth.CurrentUser(c), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save workout")
			return
		}
		HandleCreated(c, app.Logger(), e)
	}
}

func PutWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		var body service.WorkoutUpdate
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		e, err := service.UpdateWorkout(c.Request.Context(), app.Store(), auth.CurrentUser(c), id, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update workout")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func DeleteWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		if err := service.DeleteWorkout(c.Request.Context(), app.Store(), auth.CurrentUser(c), id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete workout")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": id}, nil)
	}
}

func WorkoutsInRange(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.WorkoutsInRange(c.Request.Context(), app.Store(), auth.CurrentUser(c), c.Param("start"), c.Param("end"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch workouts")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries)})
	}
}
