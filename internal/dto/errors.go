package dto

// ErrorCode is a stable machine-readable error identifier. Codes are part of
// the API contract; clients switch on them, so values never change.
type ErrorCode string

const (
	ErrCodeValidation             ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden              ErrorCode = "FORBIDDEN"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited            ErrorCode = "RATE_LIMITED"
	ErrCodePayloadTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeSchemaValidationFailed ErrorCode = "AI_SCHEMA_VALIDATION_FAILED"
	ErrCodeUpstreamUnavailable    ErrorCode = "AI_UPSTREAM_UNAVAILABLE"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetail is the nested error object kept for backward compatibility
// with clients that read the original envelope shape.
type ErrorDetail struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
}

// ErrorEnvelope is the body of every non-2xx JSON response.
type ErrorEnvelope struct {
	ErrorCode ErrorCode   `json:"error_code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id"`
	Error     ErrorDetail `json:"error"`
}

func NewErrorEnvelope(code ErrorCode, message, requestID string) ErrorEnvelope {
	return ErrorEnvelope{
		ErrorCode: code,
		Message:   message,
		RequestID: requestID,
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// APIError carries an HTTP status and stable code from a handler to the
// app-level error handler, which renders the envelope.
type APIError struct {
	Status  int
	Code    ErrorCode
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, code ErrorCode, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}
