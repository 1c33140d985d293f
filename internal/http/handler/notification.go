package handler

import (
	"net/http"

	"basegraph.app/taskflow/internal/notify"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notices *notify.MemorySink
}

func NewNotificationHandler(notices *notify.MemorySink) *NotificationHandler {
	return &NotificationHandler{notices: notices}
}

// Drain hands the buffered toasts to the presenter; each is delivered once.
func (h *NotificationHandler) Drain(c *gin.Context) {
	c.JSON(http.StatusOK, h.notices.Drain())
}
