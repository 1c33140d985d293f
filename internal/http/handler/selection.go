package handler

import (
	"net/http"

	"basegraph.app/taskflow/internal/http/dto"
	"basegraph.app/taskflow/internal/selection"
	"github.com/gin-gonic/gin"
)

type SelectionHandler struct {
	selection *selection.Store
}

func NewSelectionHandler(s *selection.Store) *SelectionHandler {
	return &SelectionHandler{selection: s}
}

func (h *SelectionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.selection.Snapshot())
}

func (h *SelectionHandler) Put(c *gin.Context) {
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.selection.SetCurrentWorkspace(req.WorkspaceID)
	if req.SidebarOpen != nil {
		h.selection.SetSidebarOpen(*req.SidebarOpen)
	}
	c.JSON(http.StatusOK, h.selection.Snapshot())
}
