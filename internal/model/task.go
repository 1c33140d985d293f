package model

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          int64        `json:"id"`
	WorkspaceID int64        `json:"workspace_id"`
	CategoryID  *int64       `json:"category_id,omitempty"`
	AssigneeID  *int64       `json:"assignee_id,omitempty"`
	CreatorID   int64        `json:"creator_id"`
	Position    int32        `json:"position"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Expanded on every read.
	Category *CategorySummary `json:"category,omitempty"`
	Assignee *UserSummary     `json:"assignee,omitempty"`
	Creator  *UserSummary     `json:"creator,omitempty"`
}

type Category struct {
	ID          int64   `json:"id"`
	WorkspaceID int64   `json:"workspace_id"`
	Name        string  `json:"name"`
	Color       *string `json:"color,omitempty"`
}

type CategorySummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}
