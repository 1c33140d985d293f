package dto

type SignInRequest struct {
	UserID int64 `json:"user_id,string" binding:"required"`
}

type SessionResponse struct {
	UserID int64 `json:"user_id,string"`
}

// SelectionRequest replaces the selected workspace (null clears it). A
// missing sidebar_open leaves the sidebar as it is.
type SelectionRequest struct {
	WorkspaceID *int64 `json:"workspace_id,string"`
	SidebarOpen *bool  `json:"sidebar_open,omitempty"`
}

type TourStepRequest struct {
	StepIndex *int `json:"step_index" binding:"required,min=0"`
}
