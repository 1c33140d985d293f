package handler

import (
	"context"
	"net/http"

	"basegraph.app/taskflow/internal/http/dto"
	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/service"
	"github.com/gin-gonic/gin"
)

type WorkspaceSyncer interface {
	List(ctx context.Context, opts ...service.ReadOption) service.View[[]model.Workspace]
	Get(ctx context.Context, workspaceID int64, opts ...service.ReadOption) service.View[*model.Workspace]
	Members(ctx context.Context, workspaceID int64, opts ...service.ReadOption) service.View[[]model.WorkspaceMember]
	Create(ctx context.Context, in service.CreateWorkspaceInput) (*service.CreateResult, error)
	Update(ctx context.Context, in service.UpdateWorkspaceInput) (*model.Workspace, error)
	Delete(ctx context.Context, workspaceID int64) error
	RetryOwnerMembership(ctx context.Context, workspaceID int64) (*model.WorkspaceMember, error)
}

type WorkspaceHandler struct {
	workspaces WorkspaceSyncer
}

func NewWorkspaceHandler(workspaces WorkspaceSyncer) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	v := h.workspaces.List(c.Request.Context(), readOptions(c)...)
	writeView(c, v, dto.ToWorkspaceListResponse)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	v := h.workspaces.Get(c.Request.Context(), workspaceID, readOptions(c)...)
	writeView(c, v, dto.ToWorkspaceResponse)
}

func (h *WorkspaceHandler) Members(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	v := h.workspaces.Members(c.Request.Context(), workspaceID, readOptions(c)...)
	writeView(c, v, dto.ToMemberListResponse)
}

// Create answers 201 when both phases succeed. A workspace-only outcome is a
// 502 whose body still carries the created workspace.
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.workspaces.Create(c.Request.Context(), service.CreateWorkspaceInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	writeMutation(c, http.StatusCreated, dto.ToCreateWorkspaceResponse(result), err)
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ws, err := h.workspaces.Update(c.Request.Context(), service.UpdateWorkspaceInput{
		ID:          workspaceID,
		Name:        req.Name,
		Description: req.Description,
	})
	writeMutation(c, http.StatusOK, dto.ToWorkspaceResponse(ws), err)
}

func (h *WorkspaceHandler) Delete(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.workspaces.Delete(c.Request.Context(), workspaceID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkspaceHandler) RetryOwnerMembership(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	member, err := h.workspaces.RetryOwnerMembership(c.Request.Context(), workspaceID)
	writeMutation(c, http.StatusOK, dto.ToMemberResponse(member), err)
}
