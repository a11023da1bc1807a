package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// General errors
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrImport     = errors.New("import failed")

	ErrVenueNotFound    = fmt.Errorf("venue %w", ErrNotFound)
	ErrLocationNotFound = fmt.Errorf("location %w", ErrNotFound)
	ErrPersonnelMissing = fmt.Errorf("personnel availability %w", ErrNotFound)

	// Booking rejections
	ErrSchedulingConflict        = errors.New("venue unavailable during requested time")
	ErrCapacityExceeded          = errors.New("insufficient personnel capacity")
	ErrMissingAvailabilityRecord = fmt.Errorf("%w: no personnel availability record for month", ErrCapacityExceeded)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field-level problem of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns nil when no field was reported.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type RejectionReason string

const (
	ReasonSchedulingConflict        RejectionReason = "scheduling_conflict"
	ReasonCapacityExceeded          RejectionReason = "capacity_exceeded"
	ReasonMissingAvailabilityRecord RejectionReason = "missing_availability_record"
)

// BookingRejected is the negative outcome of a booking request.
type BookingRejected struct {
	Reason RejectionReason
	Detail string
}

func (e *BookingRejected) Error() string {
	msg := e.Unwrap().Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *BookingRejected) Unwrap() error {
	switch e.Reason {
	case ReasonSchedulingConflict:
		return ErrSchedulingConflict
	case ReasonMissingAvailabilityRecord:
		return ErrMissingAvailabilityRecord
	default:
		return ErrCapacityExceeded
	}
}

// ImportError points at the CSV line and column that aborted an import batch.
type ImportError struct {
	Line  int
	Field string
	Err   error
}

func (e *ImportError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("%s: line %d, field %s: %v", ErrImport, e.Line, e.Field, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s: line %d: %v", ErrImport, e.Line, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: field %s: %v", ErrImport, e.Field, e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrImport, e.Err)
	}
}

func (e *ImportError) Unwrap() []error {
	return []error{ErrImport, e.Err}
}
