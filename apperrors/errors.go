package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error with an associated HTTP status code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying message as extra detail. The base
// error stays comparable with errors.Is.
func Wrap(base *Error, message string) *Error {
	return &Error{
		Code:    base.Code,
		Message: message,
		Err:     base,
	}
}

// Is lets wrapped copies match their taxonomy value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || errors.Is(e.Err, t)
}

// Transport / access errors
var (
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden    = New(http.StatusForbidden, "Access denied", nil)
	ErrNotFound     = New(http.StatusNotFound, "Not found", nil)
	ErrInternal     = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Business errors
var (
	ErrValidation         = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidState       = New(http.StatusConflict, "Operation not valid in current state", nil)
	ErrInsufficientStock  = New(http.StatusConflict, "Insufficient stock", nil)
	ErrProductUnavailable = New(http.StatusBadRequest, "Product not available", nil)
	ErrEmptyCart          = New(http.StatusBadRequest, "Cart is empty", nil)
	ErrInvalidThread      = New(http.StatusBadRequest, "Invalid thread reference", nil)
)

// Respond writes err as a JSON response. Unknown errors are reported as 500
// without leaking internals.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = &Error{Code: http.StatusInternalServerError, Message: "Internal server error", Err: err}
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
