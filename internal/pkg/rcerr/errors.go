// Package rcerr holds the user-facing error taxonomy. Every value here renders
// to a JSON body of {code, message, ...extras} in the http error handler.
package rcerr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeQuotaExhausted      = "GIFT_QUOTA_EXHAUSTED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeSyncInProgress      = "SYNC_IN_PROGRESS"
	CodeForbidden           = "FORBIDDEN"
	CodeInternalError       = "INTERNAL_ERROR"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrQuotaExhausted is returned when a user has no gifts left for the current local day.
	ErrQuotaExhausted = New(fiber.StatusConflict, CodeQuotaExhausted, "gift quota exhausted for today")

	// ErrUpstreamUnavailable is returned when the activity source cannot be reached.
	ErrUpstreamUnavailable = New(fiber.StatusBadGateway, CodeUpstreamUnavailable, "activity source is unavailable")

	// ErrSyncInProgress is returned when another sync of the same user holds the lock.
	ErrSyncInProgress = New(fiber.StatusConflict, CodeSyncInProgress, "a sync for this user is already running")

	ErrForbidden = New(fiber.StatusForbidden, CodeForbidden, "forbidden")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")
)

type Extras map[string]any

type RunclubError struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Extras     *Extras
}

func New(statusCode int, errorCode string, message string) *RunclubError {
	return &RunclubError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e RunclubError) Msg(format string, parts ...any) *RunclubError {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e RunclubError) WithExtras(extras Extras) *RunclubError {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations any) *RunclubError {
	e := *ErrInvalidReq
	e.Extras = &Extras{
		"violations": violations,
	}
	return &e
}

func (e *RunclubError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Is matches any RunclubError carrying the same error code, so that copies made
// by Msg and WithExtras still satisfy errors.Is against the sentinel values.
func (e *RunclubError) Is(target error) bool {
	t, ok := target.(*RunclubError)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}
