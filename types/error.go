package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode 统一错误码
type ErrorCode string

// 上游调用错误码
const (
	ErrRateLimited     ErrorCode = "RATE_LIMITED"
	ErrServerTransient ErrorCode = "SERVER_TRANSIENT"
	ErrClientError     ErrorCode = "CLIENT_ERROR"
	ErrNetworkError    ErrorCode = "NETWORK_ERROR"
	ErrEmptyResponse   ErrorCode = "EMPTY_RESPONSE"
)

// 终止性错误码，会穿过 pipeline 边界返回给调用方
const (
	ErrAllCredentialsExhausted ErrorCode = "ALL_CREDENTIALS_EXHAUSTED"
	ErrInvalidImageData        ErrorCode = "INVALID_IMAGE_DATA"
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"
)

// Error 结构化错误，携带错误码、HTTP 状态与重试元数据
type Error struct {
	Code       ErrorCode     `json:"code"`
	Message    string        `json:"message"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Retryable  bool          `json:"retryable"`
	Provider   string        `json:"provider,omitempty"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Cause      error         `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// WithRetryAfter 记录上游返回的 Retry-After 提示
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// AsError 在错误链中查找 *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsCode 判断错误链中是否包含指定错误码
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}
