package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/response"
)

func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, response.Success(gin.H{"status": "ok"}, nil))
	})

	public := r.Group("/api/auth")
	public.POST("/register", Register(app))
	public.POST("/login", Login(app))

	// Protected routes
	api := r.Group("/api", auth.AuthMiddleware(app.Auth(), app.Logger()))
	api.POST("/auth/logout", Logout(app))
	api.GET("/auth/me", Me(app))

	cal := api.Group("/calories")
	cal.GET("", ListCalories(app))
	cal.POST("", PostCalorie(app))
	cal.GET("/range/:start/:end", CaloriesInRange(app))
	cal.GET("/:id", GetCalorie(app))
	cal.PUT("/:id", PutCalorie(app))
	cal.DELETE("/:id", DeleteCalorie(app))

	wt := api.Group("/weights")
	wt.GET("", ListWeights(app))
	wt.POST("", PostWeight(app))
	wt.GET("/range/:start/:end", WeightsInRange(app))
	wt.GET("/:id", GetWeight(app))
	wt.PUT("/:id", PutWeight(app))
	wt.DELETE("/:id", DeleteWeight(app))

	wo := api.Group("/workouts")
	wo.GET("", ListWorkouts(app))
	wo.POST("", PostWorkout(app))
	wo.GET("/range/:start/:end", WorkoutsInRange(app))
	wo.GET("/:id", GetWorkout(app))
	wo.PUT("/:id", PutWorkout(app))
	wo.DELETE("/:id", DeleteWorkout(app))

	api.GET("/activity/recent", GetRecentActivity(app))
	api.GET("/stats", GetStatistics(app))
	api.GET("/dashboard", GetDashboard(app))
	api.GET("/export", GetExport(app))
	api.POST("/export/archive", PostArchive(app))
	api.POST("/import", PostImport(app))

	return r
}
