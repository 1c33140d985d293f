package handler

import (
	"context"
	"net/http"

	"basegraph.app/taskflow/internal/http/dto"
	"github.com/gin-gonic/gin"
)

type SessionManager interface {
	CurrentActor(ctx context.Context) (int64, error)
	SignIn(ctx context.Context, userID int64) error
	SignOut(ctx context.Context)
}

type SessionHandler struct {
	sessions SessionManager
}

func NewSessionHandler(sessions SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Get(c *gin.Context) {
	actor, err := h.sessions.CurrentActor(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{UserID: actor})
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.sessions.SignIn(c.Request.Context(), req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{UserID: req.UserID})
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	h.sessions.SignOut(c.Request.Context())
	c.Status(http.StatusNoContent)
}
