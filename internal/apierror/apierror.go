// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// Error codes exposed to clients.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeDuplicate           = "DUPLICATE"
	CodeInUse               = "IN_USE"
	CodeIDExhausted         = "ID_GENERATION_EXHAUSTED"
	CodeInternal            = "INTERNAL_ERROR"
	CodeRateLimited         = "RATE_LIMITED"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code   string `json:"error"`
	Detail string `json:"detail"`
}

func New(code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// Internal is the generic 5xx body; the real cause is only logged.
func Internal() *APIError {
	return &APIError{Code: CodeInternal, Detail: "internal server error"}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"error"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "validation failed", Fields: fields}
}
