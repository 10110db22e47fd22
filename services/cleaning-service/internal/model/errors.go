package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies engine failures. The set is closed.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindExpiredSlot
	KindAlreadyBooked
	KindDaysWithBookings
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindExpiredSlot:
		return "slot_expired"
	case KindAlreadyBooked:
		return "slot_already_booked"
	case KindDaysWithBookings:
		return "days_with_bookings"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the engine. Days is set only for
// KindDaysWithBookings and lists every conflicting day in ascending order.
type Error struct {
	Kind    Kind
	Message string
	Days    []int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrExpiredSlot      = &Error{Kind: KindExpiredSlot}
	ErrAlreadyBooked    = &Error{Kind: KindAlreadyBooked}
	ErrDaysWithBookings = &Error{Kind: KindDaysWithBookings}
)

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func ExpiredSlot(slotID string) error {
	return &Error{Kind: KindExpiredSlot, Message: "slot " + slotID + " has already started"}
}

func AlreadyBooked() error {
	return &Error{Kind: KindAlreadyBooked, Message: "this slot was just taken"}
}

// DaysWithBookings builds the edit rejection; days must already be ascending and unique.
func DaysWithBookings(days []int) error {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return &Error{
		Kind:    KindDaysWithBookings,
		Message: "cannot remove days " + strings.Join(parts, ", ") + ": booked slots exist",
		Days:    append([]int(nil), days...),
	}
}

// KindOf returns the engine kind of err, or 0 for errors from outside the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ConflictingDays extracts the day list from a DaysWithBookings error.
func ConflictingDays(err error) []int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindDaysWithBookings {
		return e.Days
	}
	return nil
}
