// Package apperr は全featureで共通のエラーモデル。
// assign/changeStatus がアセット書き込みと履歴書き込みの両方にまたがるため、
// feature単位ではなく共通パッケージに置いている。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnavailable     Code = "UNAVAILABLE"   // the backing store call failed or timed out
	CodePartialWrite    Code = "PARTIAL_WRITE" // asset saved but history append failed (or vice versa)
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
	cause   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

// ErrUnavailable wraps a failed store call so the original error stays inspectable.
func ErrUnavailable(msg string, cause error) *APIError {
	return &APIError{Code: CodeUnavailable, Message: msg, cause: cause}
}

// ErrPartialWrite marks the state where live state and audit trail are out of sync.
// Reported but never auto-repaired; reconciliation is an operator task.
func ErrPartialWrite(msg string, cause error) *APIError {
	return &APIError{Code: CodePartialWrite, Message: msg, cause: cause}
}

func CodeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
