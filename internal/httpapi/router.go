package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"household-planner/internal/config"
)

// NewRouter wires every route. metrics may be nil.
func NewRouter(env string, h *Handler, metrics http.Handler) *gin.Engine {
	if env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(h.HandleRequestLog)
	router.Use(gin.Recovery())

	router.GET("/healthz", h.HandleHealth)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
	registerRoutes(router, h)
	return router
}

func registerRoutes(router gin.IRouter, h *Handler) {
	api := router.Group("/api/v1", h.HandleRolloverMiddleware)

	api.GET("/home", h.HandleHome)
	api.GET("/insights", h.HandleInsights)
	api.GET("/insights/:name", h.HandleMemberInsights)
	api.GET("/dashboard", h.HandleDashboard)

	users := api.Group("/users")
	users.GET("", h.HandleListMembers)
	users.POST("", h.HandleAdminMiddleware, h.HandleAddMember)
	users.DELETE("/:name", h.HandleAdminMiddleware, h.HandleRemoveMember)
	users.GET("/:name/profile", h.HandleGetProfile)
	users.POST("/:name/purchase", h.HandlePurchase)

	users.GET("/:name/tasks", h.HandleGetTasks)
	users.POST("/:name/tasks", h.HandleAdminMiddleware, h.HandleCreateTask)
	users.PUT("/:name/tasks/:id", h.HandleAdminMiddleware, h.HandleUpdateTask)
	users.DELETE("/:name/tasks/:id", h.HandleAdminMiddleware, h.HandleDeleteTask)
	users.POST("/:name/tasks/:id/complete", h.HandleCompleteTask)

	api.POST("/admin/rollover", h.HandleAdminMiddleware, h.HandleRollover)
}
