// Package httputil maps domain errors and query parameters onto the HTTP API.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// ErrorResponse is the body of every non-2xx reply. Code and Program carry the
// program error so a submitter can branch on the numeric code.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Message string  `json:"message,omitempty"`
	Code    *uint32 `json:"code,omitempty"`
	Program string  `json:"program,omitempty"`
}

type errorMapping struct {
	target error
	status int
	label  string
}

// Checked in order; the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
	{apperrors.ErrInsufficientResources, http.StatusUnprocessableEntity, "insufficient_resources"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperrors.ErrRejected, http.StatusForbidden, "rejected"},
}

// resolveError picks the status and body for err. Unknown errors become a
// generic 500 whose message hides the cause.
func resolveError(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.target) {
			continue
		}
		response := ErrorResponse{Error: m.label, Message: err.Error()}
		if m.status == http.StatusNotFound {
			response.Message = "The requested resource was not found"
		}
		if programErr, ok := ledgerDomain.AsProgramError(err); ok {
			code := programErr.Code
			response.Code = &code
			response.Program = programErr.Namespace
		}
		return m.status, response
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	}
}

// HandleErrorGin writes the mapped error response. Server faults are logged at
// error level, client faults at warn.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, response := resolveError(err)
	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", response.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, response)
}

// HandleBadRequestGin answers 400 for a body that could not be decoded.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", err, logger)
}

// HandleValidationErrorGin answers 422 for a decoded request that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", err, logger)
}

func writeClientError(c *gin.Context, status int, label string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rejected request", slog.String("error_code", label), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: label, Message: err.Error()})
}
