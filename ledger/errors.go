/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All error types in one place. The taxonomy mirrors how submissions
  surface failures to callers:

  1. Validation errors - field-scoped, recoverable, carried by FieldErrors
  2. Entity-level errors - raised by writers when a record fails its own
     invariants; promoted into the submitting orchestrator's field errors
  3. Infrastructure errors - anything else; logged and surfaced as a
     single "base" error

USAGE:
  Writers return *ValidationError for anything field-scoped:

    if fe.Any() {
        return nil, &ValidationError{Fields: fe}
    }

  Orchestrators classify with errors.As / errors.Is and promote.
*/
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned by stores when an owner-scoped lookup matches
	// nothing.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned by stores when an insert violates the
	// (owner, normalized name) uniqueness constraint. The constraint lives
	// at the storage boundary, not in this package.
	ErrDuplicateName = errors.New("name already in use")

	// ErrInvalid is returned by submissions whose field errors are
	// populated. Callers read the details from Errors().
	ErrInvalid = errors.New("validation failed")
)

// =============================================================================
// FIELD ERRORS - field -> messages collection
// =============================================================================

// FieldBase is the pseudo-field for errors not tied to any input field.
const FieldBase = "base"

// FieldErrors collects human-readable validation messages per field.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// First returns the first message recorded for a field, or "".
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Promote copies nested entity errors into this collection, keeping only
// the first message per field and never overwriting a field that already
// has messages.
func (fe FieldErrors) Promote(nested FieldErrors) {
	for field, msgs := range nested {
		if len(msgs) == 0 || len(fe[field]) > 0 {
			continue
		}
		fe.Add(field, msgs[0])
	}
}

func (fe FieldErrors) String() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", f, strings.Join(fe[f], ", "))
	}
	return b.String()
}

// =============================================================================
// VALIDATION ERROR - entity-level failure raised by writers
// =============================================================================

// ValidationError carries field-scoped messages across the atomic
// operation boundary so orchestrators can promote them.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	fe := FieldErrors{}
	fe.Add(field, message)
	return &ValidationError{Fields: fe}
}

// AsValidation extracts a *ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
