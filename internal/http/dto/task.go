package dto

import (
	"time"

	"basegraph.app/taskflow/internal/model"
)

type CreateTaskRequest struct {
	Title       string             `json:"title" binding:"required,min=1,max=500"`
	Description *string            `json:"description,omitempty"`
	Status      model.TaskStatus   `json:"status,omitempty" binding:"omitempty,oneof=todo in_progress done"`
	Priority    model.TaskPriority `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
	CategoryID  *int64             `json:"category_id,string,omitempty"`
	AssigneeID  *int64             `json:"assignee_id,string,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	Position    *int32             `json:"position,omitempty" binding:"omitempty,min=1"`
}

type UpdateTaskRequest struct {
	Title       *string             `json:"title,omitempty" binding:"omitempty,min=1,max=500"`
	Description *string             `json:"description,omitempty"`
	Status      *model.TaskStatus   `json:"status,omitempty" binding:"omitempty,oneof=todo in_progress done"`
	Priority    *model.TaskPriority `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
	CategoryID  *int64              `json:"category_id,string,omitempty"`
	AssigneeID  *int64              `json:"assignee_id,string,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	Position    *int32              `json:"position,omitempty" binding:"omitempty,min=1"`
}

type MoveTaskRequest struct {
	Position int32 `json:"position" binding:"required,min=1"`
}

type CategorySummaryResponse struct {
	ID    int64   `json:"id,string"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type TaskResponse struct {
	ID          int64                    `json:"id,string"`
	WorkspaceID int64                    `json:"workspace_id,string"`
	Position    int32                    `json:"position"`
	Title       string                   `json:"title"`
	Description *string                  `json:"description,omitempty"`
	Status      model.TaskStatus         `json:"status"`
	Priority    model.TaskPriority       `json:"priority"`
	DueDate     *time.Time               `json:"due_date,omitempty"`
	Category    *CategorySummaryResponse `json:"category,omitempty"`
	Assignee    *UserSummaryResponse     `json:"assignee,omitempty"`
	Creator     *UserSummaryResponse     `json:"creator,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

func ToTaskResponse(t *model.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:          t.ID,
		WorkspaceID: t.WorkspaceID,
		Position:    t.Position,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Assignee:    ToUserSummaryResponse(t.Assignee),
		Creator:     ToUserSummaryResponse(t.Creator),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Category != nil {
		resp.Category = &CategorySummaryResponse{ID: t.Category.ID, Name: t.Category.Name, Color: t.Category.Color}
	}
	return resp
}

func ToTaskListResponse(list []model.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = *ToTaskResponse(&list[i])
	}
	return out
}
