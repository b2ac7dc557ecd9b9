/*
Package submission contains the per-use-case orchestrators that sit
between the HTTP surface and the ledger writers.

PURPOSE:
  Each use case (account setup, goal setup, debt setup, batch account
  setup, entry submission) gets one orchestrator built from the raw
  payload. Callers run Validate() for the cheap field rules, then
  Submit(ctx), which opens one atomic operation, delegates to the
  writer components, and either commits (returning the created or
  updated entity) or rolls back with the error collection populated.

ERROR PROMOTION:
  Local field validation runs before any I/O. Inside the atomic
  operation, a writer's *ledger.ValidationError is promoted into the
  orchestrator's own field errors (first message per field) and the
  operation is rolled back; Submit returns ledger.ErrInvalid. Anything
  else is logged and surfaced as a single "base" error, again with
  rollback. The caller always sees either a fully-applied change or an
  unchanged store plus a non-empty error set.

VALIDATION:
  Mechanical payload rules (required, max length, enum membership) are
  validator/v10 struct tags; decimal bounds and cross-field rules are
  explicit checks via ledger.EntryValidator.
*/
package submission

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quillfin/pocketbook/ledger"
)

// Deps carries the collaborators shared by every orchestrator.
type Deps struct {
	Store    ledger.TxStore
	Describe ledger.Describer
	Marker   ledger.OnboardingMarker // optional
	Log      *slog.Logger            // optional; defaults to slog.Default()
}

func (d Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// =============================================================================
// PAYLOAD VALIDATION - validator/v10 wired to json field names
// =============================================================================

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the payload's json names so field errors line up
	// with what the caller submitted.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func payloadMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be " + fe.Param() + " characters or fewer"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// =============================================================================
// SHARED ORCHESTRATOR STATE
// =============================================================================

// submission is the state every orchestrator embeds: the read-only error
// collection populated by Validate and Submit.
type submission struct {
	errs ledger.FieldErrors
}

// Errors returns the field -> messages collection populated after
// Validate or Submit. Empty until either runs.
func (s *submission) Errors() ledger.FieldErrors {
	if s.errs == nil {
		return ledger.FieldErrors{}
	}
	return s.errs
}

func (s *submission) reset() {
	s.errs = ledger.FieldErrors{}
}

func (s *submission) addError(field, message string) {
	s.errs.Add(field, message)
}

// checkPayload runs the validator/v10 tags and folds violations into the
// error collection.
func (s *submission) checkPayload(payload any) {
	err := payloadValidator.Struct(payload)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		s.errs.Add(ledger.FieldBase, "invalid payload")
		return
	}
	for _, fe := range verrs {
		s.errs.Add(fe.Field(), payloadMessage(fe))
	}
}

// fail classifies an error out of the atomic operation: entity-level
// validation failures are promoted into the field errors and collapse to
// ledger.ErrInvalid; everything else is logged and becomes one generic
// base error.
func (s *submission) fail(log *slog.Logger, op string, err error) error {
	if verr, ok := ledger.AsValidation(err); ok {
		s.errs.Promote(verr.Fields)
		return ledger.ErrInvalid
	}
	log.Error("submission failed", "op", op, "error", err)
	s.errs.Add(ledger.FieldBase, "something went wrong and nothing was saved")
	return err
}
