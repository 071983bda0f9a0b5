package shared

import "fmt"

// DomainError represents a domain-level error. It carries a stable code so
// interface layers can map it without string matching, and it is a plain
// value: the expected high-contention outcomes (out of stock, exhausted
// quota) are returned on the hot path and must stay cheap to construct.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes produced by the allocation core. Callers use CodeOf to branch
// on outcomes instead of matching error strings.
const (
	CodeInvalidQuantity       = "INVALID_QUANTITY"
	CodeOutOfStock            = "OUT_OF_STOCK"
	CodePurchaseLimitExceeded = "PURCHASE_LIMIT_EXCEEDED"
	CodeProductNotSellable    = "PRODUCT_NOT_SELLABLE"
	CodeQuotaExhausted        = "QUOTA_EXHAUSTED"
	CodeAlreadyIssued         = "ALREADY_ISSUED"
	CodeLockTimeout           = "LOCK_TIMEOUT"
)

// CodeOf returns the domain error code of err, or empty string if err is not
// a DomainError.
func CodeOf(err error) string {
	if de, ok := err.(*DomainError); ok {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
