package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/archivist/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.DebugContext(
		c.Request().Context(), "bad request",
		slog.String("error", msg),
		slog.String("module", "rest"),
	)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// StatusOf maps a usecase error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error renders err with the status StatusOf picks. Internal errors are
// logged and their message is not exposed.
func Error(c echo.Context, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		ctx := c.Request().Context()
		traceID := trace.SpanContextFromContext(ctx).TraceID()
		slog.ErrorContext(
			ctx, "internal error",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
			slog.String("traceId", traceID.String()),
			slog.String("module", "rest"),
		)
		return c.JSON(status, errorResponse{Error: "internal server error"})
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

type mutationResponse struct {
	Node          any              `json:"node"`
	Files         []domain.File    `json:"files"`
	Manifest      *domain.Manifest `json:"manifest,omitempty"`
	ManifestError string           `json:"manifestError,omitempty"`
}

// Mutation renders a create or update result. A manifest dispatch failure
// does not fail the request; it is reported in manifestError.
func Mutation(c echo.Context, node any, files []domain.File, manifest *domain.Manifest, manifestErr error) error {
	resp := mutationResponse{
		Node:     node,
		Files:    files,
		Manifest: manifest,
	}
	if resp.Files == nil {
		resp.Files = []domain.File{}
	}
	if manifestErr != nil {
		resp.ManifestError = manifestErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
