package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeRateLimited  = "RATE_LIMITED"

	// Leave lifecycle (4xx)
	CodeInvalidReference    = "INVALID_REFERENCE"
	CodeInvalidRange        = "INVALID_RANGE"
	CodeNoBalance           = "NO_BALANCE"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeOverlappingRequest  = "OVERLAPPING_REQUEST"
	CodeInvalidTransition   = "INVALID_TRANSITION"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
