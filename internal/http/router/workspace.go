package router

import (
	"basegraph.app/taskflow/internal/http/handler"
	"github.com/gin-gonic/gin"
)

// WorkspaceRouter nests tasks under their workspace: every task route is
// scoped by :id.
func WorkspaceRouter(rg *gin.RouterGroup, workspaces *handler.WorkspaceHandler, tasks *handler.TaskHandler) {
	rg.GET("", workspaces.List)
	rg.POST("", workspaces.Create)
	rg.GET("/:id", workspaces.Get)
	rg.PATCH("/:id", workspaces.Update)
	rg.DELETE("/:id", workspaces.Delete)
	rg.GET("/:id/members", workspaces.Members)
	rg.POST("/:id/members/owner", workspaces.RetryOwnerMembership)

	rg.GET("/:id/tasks", tasks.List)
	rg.POST("/:id/tasks", tasks.Create)
	rg.GET("/:id/tasks/:taskId", tasks.Get)
	rg.PATCH("/:id/tasks/:taskId", tasks.Update)
	rg.DELETE("/:id/tasks/:taskId", tasks.Delete)
	rg.POST("/:id/tasks/:taskId/move", tasks.Move)
}
