package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"basegraph.app/taskflow/common/id"
	"basegraph.app/taskflow/internal/auth"
	"basegraph.app/taskflow/internal/http/dto"
	"basegraph.app/taskflow/internal/mutation"
	"basegraph.app/taskflow/internal/service"
	"basegraph.app/taskflow/internal/store"
	"basegraph.app/taskflow/internal/tour"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPartialCreate):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, tour.ErrInvalidStep):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, mutation.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeView answers a read. A view with a fetch error is still a successful
// read of the cache; only a missing actor fails the request.
func writeView[T, R any](c *gin.Context, v service.View[T], convert func(T) R) {
	status := http.StatusOK
	if errors.Is(v.Err, auth.ErrUnauthenticated) {
		status = http.StatusUnauthorized
	}
	c.JSON(status, dto.ToViewResponse(v, convert))
}

func writeMutation[R any](c *gin.Context, successStatus int, value R, err error) {
	status := successStatus
	if err != nil {
		status = statusFor(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(c.Request.Context(), "mutation failed", "error", err)
		}
	}
	c.JSON(status, dto.ToMutationResponse(value, err))
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

func bindError(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: name + ": " + err.Error()})
		return 0, false
	}
	return v, true
}

func readOptions(c *gin.Context) []service.ReadOption {
	if c.Query("wait") == "true" {
		return []service.ReadOption{service.Wait()}
	}
	return nil
}
