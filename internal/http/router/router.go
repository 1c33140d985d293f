package router

import (
	"net/http"

	"basegraph.app/taskflow/internal/http/handler"
	"basegraph.app/taskflow/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		SessionRouter(v1.Group("/session"), handler.NewSessionHandler(services))
		WorkspaceRouter(v1.Group("/workspaces"),
			handler.NewWorkspaceHandler(services.Workspaces()),
			handler.NewTaskHandler(services.Tasks()),
		)
		SelectionRouter(v1.Group("/selection"), handler.NewSelectionHandler(services.Selection()))
		TourRouter(v1.Group("/tour"), handler.NewTourHandler(services.Tour()))
		NotificationRouter(v1.Group("/notifications"), handler.NewNotificationHandler(services.Notices()))
	}
}
