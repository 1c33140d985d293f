package router

import (
	"basegraph.app/taskflow/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler) {
	rg.GET("", h.Get)
	rg.PUT("", h.SignIn)
	rg.DELETE("", h.SignOut)
}

func SelectionRouter(rg *gin.RouterGroup, h *handler.SelectionHandler) {
	rg.GET("", h.Get)
	rg.PUT("", h.Put)
}

func NotificationRouter(rg *gin.RouterGroup, h *handler.NotificationHandler) {
	rg.GET("", h.Drain)
}
