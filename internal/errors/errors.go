package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ErrorCode string

// Query tier: caused by caller parameters, always recovered into an error envelope.
const (
	CodeInvalidInput ErrorCode = "invalid_input"
	CodeNoData       ErrorCode = "no_data"
)

// System tier: the dataset or the computation itself is broken. These propagate.
const (
	CodeComputation   ErrorCode = "computation_error"
	CodeDataIntegrity ErrorCode = "data_integrity"
)

// Transport codes used by the HTTP surface.
const (
	CodeInternal  ErrorCode = "internal_error"
	CodeNotFound  ErrorCode = "not_found"
	CodeRateLimit ErrorCode = "rate_limit_exceeded"
)

type AppError struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	StatusCode  int       `json:"-"`
	Cause       error     `json:"-"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithSuggestions attaches actionable hints and returns the same error.
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Timestamp:  time.Now().UTC(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Cause:      err,
		Timestamp:  time.Now().UTC(),
	}
}

func InvalidInput(message string, suggestions ...string) *AppError {
	return New(CodeInvalidInput, message).WithSuggestions(suggestions...)
}

func NoData(message string, suggestions ...string) *AppError {
	return New(CodeNoData, message).WithSuggestions(suggestions...)
}

func Integrity(format string, args ...any) *AppError {
	return New(CodeDataIntegrity, fmt.Sprintf(format, args...))
}

func IntegrityWrap(err error, format string, args ...any) *AppError {
	return Wrap(err, CodeDataIntegrity, fmt.Sprintf(format, args...))
}

func Computation(message string) *AppError {
	return New(CodeComputation, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func RateLimit(message string) *AppError {
	return New(CodeRateLimit, message)
}

// As returns the first *AppError in err's chain, or nil.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsQuery reports whether err was caused by the caller's parameters rather than
// by the dataset or the engine.
func IsQuery(err error) bool {
	appErr := As(err)
	if appErr == nil {
		return false
	}
	return appErr.Code == CodeInvalidInput || appErr.Code == CodeNoData
}

// IsIntegrity reports whether err signals an inconsistent dataset.
func IsIntegrity(err error) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == CodeDataIntegrity
}

func getStatusCode(code ErrorCode) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNoData, CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	appErr := As(err)
	if appErr == nil {
		appErr = Internal("An unexpected error occurred")
		appErr.Cause = err
	}

	appErr.RequestID = requestID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := ErrorResponse{
		Error:   appErr,
		Success: false,
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		return
	}

	logLevel := slog.LevelError
	if appErr.StatusCode < 500 {
		logLevel = slog.LevelWarn
	}

	logger.Log(context.TODO(), logLevel, "request failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Data: data, Success: true})
}

// WriteJSON writes payload as-is with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
