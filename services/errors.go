package services

import (
	"errors"
	"fmt"
)

// ErrorKind buckets service errors so the HTTP layer can map them to
// status codes without string matching.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindResourceExhausted   ErrorKind = "resource_exhausted"
	KindInternal            ErrorKind = "internal"
)

// Error is the discriminated error returned by every core operation.
// Code is a stable machine-readable identifier; Message is for humans.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind+Code so sentinel comparisons via errors.Is work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "Internal", Message: op, Err: err}
}

// ValidationError builds a request-level validation error. Exported for
// the HTTP layer's payload checks.
func ValidationError(code, message string) *Error {
	return newError(KindValidation, code, message)
}

// Sentinels for every failure mode the core surfaces. Handlers and tests
// compare against these with errors.Is.
var (
	ErrUserNotFound    = newError(KindNotFound, "UserNotFound", "user does not exist")
	ErrTeamNotFound    = newError(KindNotFound, "TeamNotFound", "team code is not valid")
	ErrProductNotFound = newError(KindNotFound, "ProductNotFound", "product does not exist")

	ErrInsufficientBalance = newError(KindInsufficientBalance, "InsufficientBalance", "point balance is not enough")

	ErrAlreadyCheckedIn = newError(KindConflict, "AlreadyCheckedIn", "already checked in today")
	ErrScheduleMissing  = newError(KindInternal, "ScheduleMissing", "no schedule configured for today")

	ErrAlreadyCreatedToday = newError(KindConflict, "AlreadyCreatedToday", "already created a team today")
	ErrAlreadyJoinedToday  = newError(KindConflict, "AlreadyJoinedToday", "already joined a team today")
	ErrAlreadyMember       = newError(KindConflict, "AlreadyMember", "already a member of this team")
	ErrTeamFull            = newError(KindConflict, "TeamFull", "team already has four members")
	ErrTeamExpired         = newError(KindConflict, "TeamExpired", "team has expired")
	ErrTeamNotPending      = newError(KindConflict, "TeamNotPending", "team is no longer accepting members")

	ErrProductNotExchangeable = newError(KindConflict, "ProductNotExchangeable", "product is not exchangeable")

	ErrCodeGenerationExhausted = newError(KindResourceExhausted, "CodeGenerationExhausted", "could not generate a unique team code")

	ErrTimeControlDisabled = newError(KindValidation, "TimeControlDisabled", "time control is disabled in this environment")
)

// KindOf extracts the ErrorKind, defaulting unknown errors to internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
