package dto

import "net/http"

// Transport-level error codes. Domain error codes pass through unchanged and
// map to statuses via DomainErrorHTTPStatus.
const (
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeNotFound    = "NOT_FOUND"
)

// DomainErrorHTTPStatus maps domain error codes to HTTP status codes.
// Configuration gaps and state-machine violations are 422: the request was
// well-formed but the engine cannot act on it.
var DomainErrorHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"NO_RATE_FOUND":      http.StatusUnprocessableEntity,
	"INVALID_HIERARCHY":  http.StatusUnprocessableEntity,
	"INVALID_TRANSITION": http.StatusUnprocessableEntity,
	"INACTIVE_POLICY":    http.StatusUnprocessableEntity,
	"PERIOD_CLOSED":      http.StatusUnprocessableEntity,
	"INACTIVE_TRACKING":  http.StatusUnprocessableEntity,

	"BAD_REQUEST":  http.StatusBadRequest,
	"INVALID_JSON": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code. Validation codes
// from domain constructors all start with INVALID_ and default to 400;
// anything unrecognized is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := DomainErrorHTTPStatus[code]; ok {
		return status
	}
	if len(code) > 8 && code[:8] == "INVALID_" {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
