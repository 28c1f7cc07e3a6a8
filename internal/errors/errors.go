// Package errors carries the typed application error used across atscore
// and the structured logger that knows how to report it.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType groups errors by where they came from
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeScoring    ErrorType = "scoring" // a scorer degraded to zero
)

// Error codes. The HTTP layer maps these to status codes.
const (
	ErrCodeFileNotFound         = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable      = "FILE_NOT_READABLE"
	ErrCodeFileTooLarge         = "FILE_TOO_LARGE"
	ErrCodeInvalidFormat        = "INVALID_FORMAT"
	ErrCodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	ErrCodeEmptyDocument        = "EMPTY_DOCUMENT"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeInvalidWeights       = "INVALID_WEIGHTS"
	ErrCodeInvalidConfig        = "INVALID_CONFIG"
	ErrCodeAIServiceFailed      = "AI_SERVICE_FAILED"
	ErrCodeNetworkTimeout       = "NETWORK_TIMEOUT"
	ErrCodeVectorizationFailed  = "VECTORIZATION_FAILED"
	ErrCodeEncodingFailed       = "ENCODING_FAILED"
	ErrCodeVocabularyLoadFailed = "VOCABULARY_LOAD_FAILED"
	ErrCodeReportFailed         = "REPORT_FAILED"
)

// AppError is an error with a category, a stable code and optional
// key/value context for logging.
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithContext attaches a key/value pair and returns e for chaining.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = map[string]any{}
	}
	e.Context[key] = value
	return e
}

func build(typ ErrorType) func(code, message string, cause error) *AppError {
	return func(code, message string, cause error) *AppError {
		return &AppError{Type: typ, Code: code, Message: message, Cause: cause}
	}
}

var (
	NewValidationError = build(ErrorTypeValidation)
	NewIOError         = build(ErrorTypeIO)
	NewAIError         = build(ErrorTypeAI)
	NewNetworkError    = build(ErrorTypeNetwork)
	NewConfigError     = build(ErrorTypeConfig)
	NewInternalError   = build(ErrorTypeInternal)
	NewScoringError    = build(ErrorTypeScoring)
)

func asApp(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsType reports whether err wraps an AppError of type typ.
func IsType(err error, typ ErrorType) bool {
	appErr, ok := asApp(err)
	return ok && appErr.Type == typ
}

// CodeOf returns the code of the AppError wrapped by err, or "".
func CodeOf(err error) string {
	if appErr, ok := asApp(err); ok {
		return appErr.Code
	}
	return ""
}
