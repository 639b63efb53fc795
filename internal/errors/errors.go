package errors

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// Kind classifies an expected, caller-recoverable failure.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInactive           Kind = "inactive_resource"
	KindOutOfRange         Kind = "out_of_range"
	KindSlotUnavailable    Kind = "slot_unavailable"
	KindMissingContactInfo Kind = "missing_contact_info"
	KindInvalidTransition  Kind = "invalid_state_transition"
	KindPolicyViolation    Kind = "policy_violation"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
)

// Error is a structured business error. Message is stable and safe to show
// to end users; Reason carries the specific cause where one exists.
type Error struct {
	Kind    Kind
	Message string
	Reason  string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Reason)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// As returns the *Error wrapped in err.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

const (
	ReasonPastDate    = "past date"
	ReasonUnavailable = "unavailable"
	ReasonBooked      = "booked"
)

func NotFound(what string) *Error {
	return Newf(KindNotFound, "%s not found", what)
}

func Inactive(what string) *Error {
	return Newf(KindInactive, "%s is not active", what)
}

func SlotUnavailable(reason string) *Error {
	return &Error{Kind: KindSlotUnavailable, Message: "selected time slot is not available", Reason: reason}
}

func MissingGuestContact() *Error {
	return New(KindMissingContactInfo, "guest email, name and phone are required for bookings without an account")
}

func InvalidTransition(from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: "booking status change is not allowed", Reason: fmt.Sprintf("%s -> %s", from, to)}
}

func PolicyViolation(reason string) *Error {
	return &Error{Kind: KindPolicyViolation, Message: "booking cannot be changed", Reason: reason}
}

func OutOfRange(reason string) *Error {
	return &Error{Kind: KindOutOfRange, Message: "attendee count is out of range", Reason: reason}
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}
