package router

import (
	"basegraph.app/taskflow/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func TourRouter(rg *gin.RouterGroup, h *handler.TourHandler) {
	rg.GET("", h.Get)
	rg.POST("/start", h.Start)
	rg.POST("/stop", h.Stop)
	rg.POST("/skip", h.Skip)
	rg.POST("/complete", h.Complete)
	rg.POST("/reset", h.Reset)
	rg.PUT("/step", h.SetStep)
}
