package handler

import (
	"context"
	"net/http"

	"basegraph.app/taskflow/internal/http/dto"
	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskSyncer interface {
	List(ctx context.Context, workspaceID int64, opts ...service.ReadOption) service.View[[]model.Task]
	Get(ctx context.Context, workspaceID, taskID int64, opts ...service.ReadOption) service.View[*model.Task]
	Create(ctx context.Context, in service.CreateTaskInput) (*model.Task, error)
	Update(ctx context.Context, in service.UpdateTaskInput) (*model.Task, error)
	Move(ctx context.Context, in service.MoveTaskInput) (*model.Task, error)
	Delete(ctx context.Context, in service.DeleteTaskInput) error
}

type TaskHandler struct {
	tasks TaskSyncer
}

func NewTaskHandler(tasks TaskSyncer) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	v := h.tasks.List(c.Request.Context(), workspaceID, readOptions(c)...)
	writeView(c, v, dto.ToTaskListResponse)
}

func (h *TaskHandler) Get(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	v := h.tasks.Get(c.Request.Context(), workspaceID, taskID, readOptions(c)...)
	writeView(c, v, dto.ToTaskResponse)
}

func (h *TaskHandler) Create(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), service.CreateTaskInput{
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CategoryID:  req.CategoryID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Position:    req.Position,
	})
	writeMutation(c, http.StatusCreated, dto.ToTaskResponse(task), err)
}

func (h *TaskHandler) Update(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), service.UpdateTaskInput{
		WorkspaceID: workspaceID,
		ID:          taskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CategoryID:  req.CategoryID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Position:    req.Position,
	})
	writeMutation(c, http.StatusOK, dto.ToTaskResponse(task), err)
}

func (h *TaskHandler) Move(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.tasks.Move(c.Request.Context(), service.MoveTaskInput{
		WorkspaceID: workspaceID,
		ID:          taskID,
		Position:    req.Position,
	})
	writeMutation(c, http.StatusOK, dto.ToTaskResponse(task), err)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), service.DeleteTaskInput{WorkspaceID: workspaceID, ID: taskID}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
