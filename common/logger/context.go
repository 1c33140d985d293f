package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Sync code enriches the context once (workspace, task, cache key) and every log line
// below it picks the fields up without passing them around.
type LogFields struct {
	WorkspaceID *int64  // Workspace the operation is scoped to
	TaskID      *int64  // Task being read or mutated
	UserID      *int64  // Current actor
	CacheKey    *string // Canonical entity cache key (e.g., "tasks/42")
	CallSite    *string // Mutation call site name (e.g., "task.create")
	Component   string  // Component name (OTel semantic convention style, e.g., "taskflow.cache")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.WorkspaceID != nil {
		result.WorkspaceID = new.WorkspaceID
	}
	if new.TaskID != nil {
		result.TaskID = new.TaskID
	}
	if new.UserID != nil {
		result.UserID = new.UserID
	}
	if new.CacheKey != nil {
		result.CacheKey = new.CacheKey
	}
	if new.CallSite != nil {
		result.CallSite = new.CallSite
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{TaskID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
