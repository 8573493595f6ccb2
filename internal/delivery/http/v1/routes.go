package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api and the code exchange
// page at /home.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/healthz", h.HandleHealth)
	router.GET("/home", h.HandleHome)

	api := router.Group("/api")

	authRouter := api.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)
	authRouter.POST("/code", h.HandleAuthMiddleware, h.HandleIssueAuthCode)
	authRouter.GET("/sessions", h.HandleAuthMiddleware, h.HandleGetSessions)
	authRouter.DELETE("/sessions/:id", h.HandleAuthMiddleware, h.HandleDeleteSession)

	protected := api.Group("", h.HandleAuthMiddleware)

	tasks := protected.Group("/tasks")
	tasks.POST("", h.HandleCreateTask)
	tasks.GET("", h.HandleGetTasks)
	tasks.GET("/board", h.HandleGetBoard)
	tasks.POST("/generate", h.HandleGenerateTasks)
	tasks.GET("/:id", h.HandleGetTask)
	tasks.PATCH("/:id", h.HandleUpdateTask)
	tasks.PUT("/:id/complete", h.HandleCompleteTask)
	tasks.PUT("/:id/incomplete", h.HandleIncompleteTask)
	tasks.PUT("/:id/workspace", h.HandleMoveTask)
	tasks.DELETE("/:id", h.HandleDeleteTask)

	laps := protected.Group("/laps")
	laps.POST("", h.HandleCreateLap)
	laps.GET("", h.HandleGetLaps)
	laps.GET("/stream", h.HandleLapStream)
	laps.PATCH("/:id", h.HandleUpdateLap)
	laps.DELETE("/:id", h.HandleDeleteLap)

	workspaces := protected.Group("/workspaces")
	workspaces.POST("", h.HandleCreateWorkspace)
	workspaces.GET("", h.HandleGetWorkspaces)
	workspaces.PATCH("/:id", h.HandleUpdateWorkspace)
	workspaces.DELETE("/:id", h.HandleDeleteWorkspace)

	protected.GET("/preferences", h.HandleGetPreferences)
	protected.PUT("/preferences", h.HandleSavePreferences)

	protected.GET("/stats", h.HandleGetStats)
	protected.GET("/stats/tasks", h.HandleGetTaskStats)
}
