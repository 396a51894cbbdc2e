package resp

import (
	"errors"
	"net/http"

	"github.com/taskhive/taskhive/ecode"
)

// UnAuthorized indicates that the request is unauthorized.
func UnAuthorized(message string, data ...any) *Exception {
	return newResponse(http.StatusUnauthorized, ecode.Unauthorized, message, data...)
}

// BadRequest indicates a bad request.
func BadRequest(message string, data ...any) *Exception {
	return newResponse(http.StatusBadRequest, ecode.RequestErr, message, data...)
}

// NotFound indicates that the requested resource is not found.
func NotFound(message string, data ...any) *Exception {
	return newResponse(http.StatusNotFound, ecode.NothingFound, message, data...)
}

// Forbidden indicates access is forbidden.
func Forbidden(message string, data ...any) *Exception {
	return newResponse(http.StatusForbidden, ecode.AccessDenied, message, data...)
}

// InternalServer indicates a server error.
func InternalServer(message string, data ...any) *Exception {
	return newResponse(http.StatusInternalServerError, ecode.ServerErr, message, data...)
}

// Conflict indicates a conflict error.
func Conflict(message string, data ...any) *Exception {
	return newResponse(http.StatusConflict, ecode.Conflict, message, data...)
}

// TooLarge indicates the request body exceeds the allowed size.
func TooLarge(message string, data ...any) *Exception {
	return newResponse(http.StatusRequestEntityTooLarge, ecode.PayloadTooLarge, message, data...)
}

// Unavailable indicates a dependency is temporarily unavailable.
func Unavailable(message string, data ...any) *Exception {
	return newResponse(http.StatusServiceUnavailable, ecode.ServiceUnavailable, message, data...)
}

// fieldErrors is implemented by validation errors carrying per-field messages.
type fieldErrors interface {
	FieldErrors() map[string]string
}

// FromError maps a service error onto the response taxonomy. Errors outside
// the taxonomy become a generic 500 so internal details are not leaked.
func FromError(err error) *Exception {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex
	}

	code := ecode.CodeOf(err)
	var fe fieldErrors
	if code == ecode.RequestErr && errors.As(err, &fe) {
		return BadRequest(err.Error(), fe.FieldErrors())
	}
	if code == ecode.ServerErr {
		return InternalServer(ecode.Text(ecode.ServerErr))
	}
	return newResponse(ecode.ToHTTPStatus(code), code, err.Error())
}
