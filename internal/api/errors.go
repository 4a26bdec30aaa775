package api

import (
	"errors"
	"net/http"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
	ErrCodeUnavailable   = "unavailable"
)

// AIStatus maps an AI failure kind to an HTTP status.
func AIStatus(kind llm.ErrorKind) int {
	switch kind {
	case llm.KindRateLimit:
		return http.StatusTooManyRequests
	case llm.KindNetwork:
		return http.StatusBadGateway
	case llm.KindAPIKeyMissing:
		return http.StatusServiceUnavailable
	case llm.KindInvalidResponse, llm.KindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, APIError{Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeAIError reports an adapter failure with its localized message.
func (s *Server) writeAIError(c *gin.Context, err error) {
	var aiErr *llm.Error
	if !errors.As(err, &aiErr) {
		s.writeStoreError(c, err)
		return
	}
	kind := aiErr.Kind
	s.logger.Warn("AI request failed", "kind", kind, "error", err)
	writeError(c, AIStatus(kind), kind.String(), localizer(c).ErrorMessage(kind))
}

// writeStoreError maps storage and validation failures.
func (s *Server) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, common.ErrDuplicateEntry):
		writeError(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, storage.ErrInvalidTransaction),
		errors.Is(err, storage.ErrInvalidDateRange),
		errors.Is(err, common.ErrIncomplete):
		badRequest(c, err.Error())
	default:
		s.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred")
	}
}
