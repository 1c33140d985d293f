package model

import "time"

type Workspace struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Role is the reading actor's membership role, expanded on list reads.
	Role Role `json:"role,omitempty"`
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may update the workspace itself.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

type WorkspaceMember struct {
	WorkspaceID int64        `json:"workspace_id"`
	UserID      int64        `json:"user_id"`
	Role        Role         `json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
	User        *UserSummary `json:"user,omitempty"`
}
