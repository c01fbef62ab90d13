package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fooddb/internal/recipe"
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeRequestTimeout = "REQUEST_TIMEOUT"
	CodeBadGateway     = "BAD_GATEWAY"
	CodeTooLarge       = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, msg string) {
	abort(c, http.StatusBadRequest, CodeInvalidRequest, msg)
}

// bindJSON decodes the request body into v, answering 413 when the body
// limit was hit and 400 for anything else.
func bindJSON(c *gin.Context, v any) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abort(c, http.StatusRequestEntityTooLarge, CodeTooLarge, "request body too large")
		return false
	}
	badRequest(c, "invalid JSON body")
	return false
}

func notFound(c *gin.Context, msg string) {
	abort(c, http.StatusNotFound, CodeNotFound, msg)
}

// storeError maps a storage failure onto a response. op names the failed
// action for the log and the client message.
func (h *Handler) storeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		notFound(c, op+": not found")
	case errors.Is(err, context.DeadlineExceeded):
		abort(c, http.StatusRequestTimeout, CodeRequestTimeout, op+": timed out")
	default:
		h.log.Error(op, zap.Error(err), zap.String("request_id", requestID(c)))
		c.Error(err)
		abort(c, http.StatusInternalServerError, CodeInternalError, op)
	}
}
