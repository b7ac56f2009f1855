package apierrors

import (
	"net/http"
	"strings"
)

// ErrorResponse is the JSON error envelope returned by the service's JSON endpoints.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// New builds an envelope whose code is derived from the HTTP status text.
func New(status int, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Code:      CodeForStatus(status),
		Message:   message,
		RequestID: requestID,
	}
}

// CodeForStatus turns a status into a snake_case code, e.g. 404 -> "not_found".
func CodeForStatus(status int) string {
	return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// ToStatusCode maps a domain specific error code to an HTTP status for default responses.
func ToStatusCode(code string) int {
	switch code {
	case "not_found":
		return http.StatusNotFound
	case "unauthorized":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "conflict":
		return http.StatusConflict
	case "bad_request":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
