package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
)

// ContextRequestID is the gin context key holding the request id.
const ContextRequestID = "request_id"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithSuccess sends data with the given status
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// RespondWithError maps err onto an HTTP status and aborts the chain.
// Details of internal errors are logged, never returned.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	status := appErr.StatusCode()
	traceID := c.GetString(ContextRequestID)

	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("trace_id", traceID).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, ErrorBody{
		Code:    status,
		Error:   string(appErr.Code),
		Message: appErr.Message,
		TraceID: traceID,
	})
}
