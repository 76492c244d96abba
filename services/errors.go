// Package services holds the registration, capacity and check-in logic.
// File: services/errors.go
package services

import (
	"errors"
	"fmt"

	"conference-desk/store"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown participant or registration.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQR marks scanned text that is not a badge issued by this server.
	ErrInvalidQR = errors.New("invalid qr code")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Precondition rule identifiers returned to clients.
const (
	RuleAlreadyRecorded           = "already_recorded"
	RuleWorkshopMismatch          = "workshop_mismatch"
	RuleCompetitionMismatch       = "competition_mismatch"
	RuleAccommodationNotRequested = "accommodation_not_requested"
	RuleAlreadyCheckedIn          = "already_checked_in"
	RuleNotCheckedIn              = "not_checked_in"
	RuleAlreadyCheckedOut         = "already_checked_out"
	RuleRegistrationNotConfirmed  = "registration_not_confirmed"
	RuleStatusRegression          = "status_regression"
	RuleStatusChanged             = "status_changed"
	RuleDirectJoinUnavailable     = "direct_join_unavailable"
	RuleBadgeSuperseded           = "badge_superseded"
)

// PreconditionError reports which domain rule rejected an action.
type PreconditionError struct {
	Rule    string
	Message string
	Details map[string]string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func precondition(rule string, details map[string]string, format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Rule: rule, Message: fmt.Sprintf(format, args...), Details: details}
}

// CapacityError reports a closed track or a full event.
type CapacityError struct {
	Track string // "event" for the global cap
	Used  int
	Max   int
}

func (e *CapacityError) Error() string {
	if e.Track == "event" {
		return fmt.Sprintf("registrations are closed: %d of %d participant slots are taken", e.Used, e.Max)
	}
	return fmt.Sprintf("%s is full: %d of %d slots are taken", e.Track, e.Used, e.Max)
}

// notFound converts store.ErrNotFound into the service sentinel and passes
// every other error through untouched.
func notFound(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}
