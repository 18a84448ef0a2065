package utils

import (
	"errors"
	"net/http"
	"strings"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUpstream        Code = "UPSTREAM"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeNotConfigured   Code = "NOT_CONFIGURED"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL"
)

var codeStatus = map[Code]int{
	CodeInvalidArgument: http.StatusBadRequest,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeUpstream:        http.StatusBadGateway,
	CodeUnavailable:     http.StatusServiceUnavailable,
	CodeNotConfigured:   http.StatusServiceUnavailable,
	CodeTimeout:         http.StatusGatewayTimeout,
	CodeInternal:        http.StatusInternalServerError,
}

// Status is the HTTP status a code renders as. Unknown codes are 500.
func (c Code) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the same request may succeed later unchanged:
// oracle failures, timeouts and a missing oracle configuration.
func (c Code) Retryable() bool {
	return c == CodeUpstream || c == CodeTimeout || c == CodeNotConfigured
}

// AppError is the unified error contract across layers.
type AppError struct {
	Code    Code
	Op      string // ex: "ChatService.Send"
	Message string // safe to show to the caller
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Op, e.Message} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "error"
	}
	return strings.Join(parts, ": ")
}

func (e *AppError) Unwrap() error { return e.Err }

func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

func asAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// CodeOf returns the code carried by err. Bare repository sentinels map to
// their natural code; anything else is CodeInternal.
func CodeOf(err error) Code {
	if ae, ok := asAppError(err); ok {
		return ae.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidID):
		return CodeInvalidArgument
	case errors.Is(err, ErrDuplicate):
		return CodeConflict
	}
	return CodeInternal
}

// MessageOf returns the safe message carried by err.
func MessageOf(err error) string {
	if ae, ok := asAppError(err); ok && ae.Message != "" {
		return ae.Message
	}
	return http.StatusText(HTTPStatus(err))
}

func IsCode(err error, code Code) bool {
	ae, ok := asAppError(err)
	return ok && ae.Code == code
}

func HTTPStatus(err error) int { return CodeOf(err).Status() }

// Repository-level sentinel errors
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInvalidID = errors.New("invalid id")
)
