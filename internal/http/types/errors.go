// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/canonical/tenant-notes/internal/storage"
)

type Code string

const (
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeIsolationViolation Code = "TENANT_ISOLATION_VIOLATION"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeRequestTooLarge    Code = "REQUEST_TOO_LARGE"
	CodeInvalidContentType Code = "INVALID_CONTENT_TYPE"
	CodePlanLimitReached   Code = "PLAN_LIMIT_REACHED"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeIsolationViolation: http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeRateLimitExceeded:  http.StatusTooManyRequests,
	CodeNotFound:           http.StatusNotFound,
	CodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	CodeInvalidContentType: http.StatusUnsupportedMediaType,
	CodePlanLimitReached:   http.StatusForbidden,
	CodeConflict:           http.StatusConflict,
	CodeInternal:           http.StatusInternalServerError,
}

// Error is the client-facing error. Message and Details are sent verbatim,
// so they must never carry backend diagnostics.
type Error struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) WithDetails(details interface{}) *Error {
	c := *e
	c.Details = details
	return &c
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap keeps err as the cause for logs while exposing only code and message.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func Unauthorized(message string) *Error { return NewError(CodeUnauthorized, message) }
func Forbidden(message string) *Error    { return NewError(CodeForbidden, message) }
func Validation(message string) *Error   { return NewError(CodeValidation, message) }
func NotFound(message string) *Error     { return NewError(CodeNotFound, message) }
func IsolationViolation() *Error {
	return NewError(CodeIsolationViolation, "access to this tenant is not allowed")
}
func RequestTooLarge(limit int64) *Error {
	return NewError(CodeRequestTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit))
}
func InvalidContentType(want string) *Error {
	return NewError(CodeInvalidContentType, "content type must be "+want)
}
func Internal(err error) *Error { return Wrap(CodeInternal, "internal server error", err) }

func RateLimitExceeded(retryAfterSeconds int64) *Error {
	return NewError(CodeRateLimitExceeded, "too many requests").WithDetails(map[string]int64{"retryAfter": retryAfterSeconds})
}

func PlanLimitReached(limit int) *Error {
	return NewError(CodePlanLimitReached, fmt.Sprintf("free plan is limited to %d notes, upgrade to add more", limit))
}

// FromError maps any error onto the taxonomy. Storage misses become 404
// whatever their cause, which is what keeps cross-tenant rows invisible.
func FromError(err error) *Error {
	var (
		apiErr      *Error
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &maxBytesErr):
		return RequestTooLarge(maxBytesErr.Limit)
	case errors.Is(err, storage.ErrNotFound):
		return Wrap(CodeNotFound, "resource not found", err)
	case errors.Is(err, storage.ErrDuplicateKey):
		return Wrap(CodeConflict, "resource already exists", err)
	case errors.Is(err, storage.ErrUnknownColumn):
		return Wrap(CodeValidation, "invalid query", err)
	default:
		return Internal(err)
	}
}
