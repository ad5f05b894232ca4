package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/service"
	"github.com/yourname/fittrack/internal/stats"
)

func ListWeights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		w, err := stats.ParseWindow(c.Query("window"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid window")
			return
		}
		entries, err := service.ListWeights(c.Request.Context(), app.Store(), user, w, app.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch weight entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries), "window": w})
	}
}

func GetWeight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		e, err := service.GetWeight(c.Request.Context(), app.Store(), auth.CurrentUser(c), id)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch weight entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func PostWeight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.WeightRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		policy := service.DuplicatePolicy(app.Config().WeightDuplicatePolicy)
		e, err := service.CreateWeight(c.Request.Context(), app.Store(), auth.CurrentUser(c), &body, policy)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save weight entry")
			return
		}
		HandleCreated(c, app.Logger(), e)
	}
}

func PutWeight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		var body service.WeightUpdate
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		e, err := service.UpdateWeight(c.Request.Context(), app.Store(), auth.CurrentUser(c), id, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update weight entry")
			return
		}
		HandleSuccess(c, app.Logger(), e, nil)
	}
}

func DeleteWeight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			HandleError(c, app.Logger(), errBadID, 400, "Invalid id")
			return
		}
		if err := service.DeleteWeight(c.Request.Context(), app.Store(), auth.CurrentUser(c), id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete weight entry")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"deleted": id}, nil)
	}
}

func WeightsInRange(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.WeightsInRange(c.Request.Context(), app.Store(), auth.CurrentUser(c), c.Param("start"), c.Param("end"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch weight entries")
			return
		}
		HandleSuccess(c, app.Logger(), entries, map[string]any{"count": len(entries)})
	}
}
