package ecode

import "net/http"

// Business codes carried in the response envelope.
const (
	OK                 = 0
	RequestErr         = -400
	Unauthorized       = -401
	AccessDenied       = -403
	NothingFound       = -404
	MethodNotAllowed   = -405
	Conflict           = -409
	PayloadTooLarge    = -413
	ServerErr          = -500
	ServiceUnavailable = -503
)

var texts = map[int]string{
	OK:                 "ok",
	RequestErr:         "Invalid request",
	Unauthorized:       "Unauthorized",
	AccessDenied:       "Access denied",
	NothingFound:       "Resource not found",
	MethodNotAllowed:   "Method not allowed",
	Conflict:           "Resource conflict",
	PayloadTooLarge:    "Payload too large",
	ServerErr:          "Internal server error",
	ServiceUnavailable: "Service unavailable",
}

// Text returns the default message of a code.
func Text(code int) string {
	if t, ok := texts[code]; ok {
		return t
	}
	return texts[ServerErr]
}

// ToHTTPStatus maps a business code to an HTTP status.
func ToHTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case RequestErr:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	case NothingFound:
		return http.StatusNotFound
	case MethodNotAllowed:
		return http.StatusMethodNotAllowed
	case Conflict:
		return http.StatusConflict
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
