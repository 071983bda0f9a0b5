package dto

import "net/http"

// Error codes produced by the interface layer itself
const (
	// ErrCodeBadRequest is used for malformed or unparseable requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used when no better classification exists
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Contention outcomes are client-visible business results, not server
// faults: sold out and exhausted map to 422, a lost lock race to 503 so
// callers know a retry may succeed.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,

	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_PRODUCT":  http.StatusBadRequest,
	"INVALID_OWNER":    http.StatusBadRequest,
	"INVALID_REQUEST":  http.StatusBadRequest,

	"OUT_OF_STOCK":            http.StatusUnprocessableEntity,
	"QUOTA_EXHAUSTED":         http.StatusUnprocessableEntity,
	"PURCHASE_LIMIT_EXCEEDED": http.StatusUnprocessableEntity,
	"PRODUCT_NOT_SELLABLE":    http.StatusUnprocessableEntity,
	"COUPON_EXPIRED":          http.StatusUnprocessableEntity,

	"ALREADY_ISSUED":       http.StatusConflict,
	"INVALID_STATE":        http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"LOCK_TIMEOUT": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for a domain error code,
// defaulting to 500 for anything unmapped.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
