// Package handler holds helpers shared by the resource handlers.
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
)

// BindJSON decodes and validates the request body into req.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindError(err)
	}
	return nil
}

// BindQuery decodes and validates the query string into req.
func BindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return bindError(err)
		}
		return apperrors.InvalidInput("malformed query parameters", err)
	}
	return nil
}

// ParseUUIDParam reads a path parameter as a UUID. A malformed id cannot
// name an existing resource, so it maps to not found.
func ParseUUIDParam(c *gin.Context, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NotFound(resource, err)
	}
	return id, nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperrors.InvalidInput(strings.Join(msgs, "; "), err)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.InvalidInput("request body too large", err)
	}
	if errors.Is(err, io.EOF) {
		return apperrors.InvalidInput("request body is required", err)
	}
	return apperrors.InvalidInput("malformed request body", err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "severity":
		return fmt.Sprintf("%s must be one of low, medium, high", field)
	case "case_status":
		return fmt.Sprintf("%s must be one of pending, in_review, reviewed, closed", field)
	case "role":
		return fmt.Sprintf("%s must be doctor or patient", field)
	case "sender_type":
		return fmt.Sprintf("%s must be one of doctor, patient, ai", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
