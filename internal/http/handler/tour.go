package handler

import (
	"context"
	"log/slog"
	"net/http"

	"basegraph.app/taskflow/internal/http/dto"
	"basegraph.app/taskflow/internal/tour"
	"github.com/gin-gonic/gin"
)

type TourHandler struct {
	tour *tour.Machine
}

func NewTourHandler(m *tour.Machine) *TourHandler {
	return &TourHandler{tour: m}
}

func (h *TourHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.tour.State())
}

func (h *TourHandler) Start(c *gin.Context)    { h.transition(c, h.tour.Start) }
func (h *TourHandler) Stop(c *gin.Context)     { h.transition(c, h.tour.Stop) }
func (h *TourHandler) Skip(c *gin.Context)     { h.transition(c, h.tour.Skip) }
func (h *TourHandler) Complete(c *gin.Context) { h.transition(c, h.tour.Complete) }
func (h *TourHandler) Reset(c *gin.Context)    { h.transition(c, h.tour.Reset) }

func (h *TourHandler) SetStep(c *gin.Context) {
	var req dto.TourStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.tour.SetStep(c.Request.Context(), *req.StepIndex); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tour.State())
}

// transition always answers with the new state: the in-memory machine moves
// even when persisting a flag fails, so the failure is only logged here.
func (h *TourHandler) transition(c *gin.Context, fn func(ctx context.Context) error) {
	ctx := c.Request.Context()
	if err := fn(ctx); err != nil {
		slog.WarnContext(ctx, "tour flag not persisted", "error", err)
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, h.tour.State())
}
