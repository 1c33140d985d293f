package dto

import "basegraph.app/taskflow/internal/service"

// ViewResponse is the body of every read: the last-known value, whether a
// refresh is outstanding, and the last fetch error.
type ViewResponse[T any] struct {
	Value   T       `json:"value"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

// MutationResponse is the body of every write. Value is the server-confirmed
// record, or whatever partial result the write produced when Error is set.
type MutationResponse[T any] struct {
	Value   T       `json:"value"`
	Pending bool    `json:"pending"`
	Error   *string `json:"error"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToViewResponse[T, R any](v service.View[T], convert func(T) R) ViewResponse[R] {
	return ViewResponse[R]{Value: convert(v.Value), Loading: v.Loading, Error: errString(v.Err)}
}

func ToMutationResponse[R any](value R, err error) MutationResponse[R] {
	return MutationResponse[R]{Value: value, Error: errString(err)}
}

func errString(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
