package dto

import (
	"time"

	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/service"
)

type CreateWorkspaceRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Slug        *string `json:"slug,omitempty" binding:"omitempty,min=1,max=60"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
}

type WorkspaceResponse struct {
	ID          int64      `json:"id,string"`
	OwnerID     int64      `json:"owner_id,string"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	Role        model.Role `json:"role,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateWorkspaceResponse struct {
	Status    service.CreateStatus `json:"status"`
	Workspace *WorkspaceResponse   `json:"workspace,omitempty"`
}

type MemberResponse struct {
	WorkspaceID int64                `json:"workspace_id,string"`
	UserID      int64                `json:"user_id,string"`
	Role        model.Role           `json:"role"`
	CreatedAt   time.Time            `json:"created_at"`
	User        *UserSummaryResponse `json:"user,omitempty"`
}

type UserSummaryResponse struct {
	ID        int64   `json:"id,string"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func ToWorkspaceResponse(ws *model.Workspace) *WorkspaceResponse {
	if ws == nil {
		return nil
	}
	return &WorkspaceResponse{
		ID:          ws.ID,
		OwnerID:     ws.OwnerID,
		Name:        ws.Name,
		Slug:        ws.Slug,
		Description: ws.Description,
		Role:        ws.Role,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}
}

func ToWorkspaceListResponse(list []model.Workspace) []WorkspaceResponse {
	out := make([]WorkspaceResponse, len(list))
	for i := range list {
		out[i] = *ToWorkspaceResponse(&list[i])
	}
	return out
}

func ToCreateWorkspaceResponse(r *service.CreateResult) *CreateWorkspaceResponse {
	if r == nil {
		return nil
	}
	return &CreateWorkspaceResponse{Status: r.Status, Workspace: ToWorkspaceResponse(r.Workspace)}
}

func ToMemberResponse(m *model.WorkspaceMember) *MemberResponse {
	if m == nil {
		return nil
	}
	return &MemberResponse{
		WorkspaceID: m.WorkspaceID,
		UserID:      m.UserID,
		Role:        m.Role,
		CreatedAt:   m.CreatedAt,
		User:        ToUserSummaryResponse(m.User),
	}
}

func ToMemberListResponse(list []model.WorkspaceMember) []MemberResponse {
	out := make([]MemberResponse, len(list))
	for i := range list {
		out[i] = *ToMemberResponse(&list[i])
	}
	return out
}

func ToUserSummaryResponse(u *model.UserSummary) *UserSummaryResponse {
	if u == nil {
		return nil
	}
	return &UserSummaryResponse{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}
