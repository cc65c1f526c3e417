package docschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hatsunemiku3939/docschema/pkg/report"
)

// FailureKind enumerates why a document was rejected.
type FailureKind int

const (
	// FailNone indicates the document is valid.
	FailNone FailureKind = iota
	// FailMalformedInput indicates the document text could not be parsed at all.
	FailMalformedInput
	// FailMissingSchemaField indicates auto-detection found no $schema field.
	FailMissingSchemaField
	// FailUnsupportedSchema indicates the $schema value names no supported root schema.
	FailUnsupportedSchema
	// FailSchemaViolation indicates the document failed structural validation.
	FailSchemaViolation
	// FailSystem indicates the evaluator itself failed.
	FailSystem
)

var failureKindNames = map[FailureKind]string{
	FailNone:               "None",
	FailMalformedInput:     "MalformedInput",
	FailMissingSchemaField: "MissingSchemaField",
	FailUnsupportedSchema:  "UnsupportedSchema",
	FailSchemaViolation:    "SchemaViolation",
	FailSystem:             "System",
}

func (k FailureKind) String() string {
	if s, ok := failureKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FailureKind(%d)", int(k))
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailMalformedInput:
		return ErrMalformedInput
	case FailMissingSchemaField:
		return ErrMissingSchemaField
	case FailUnsupportedSchema:
		return ErrUnsupportedSchema
	case FailSchemaViolation:
		return ErrSchemaViolation
	case FailSystem:
		return ErrSchemaValidationSystem
	}
	return nil
}

// Error is returned by the Validator for every rejected document.
type Error struct {
	Kind FailureKind
	// Identifier is the schema identifier involved, when there is one.
	Identifier string
	// Failure is the raw failure tree of a FailSchemaViolation.
	Failure *report.FailureNode
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case FailMalformedInput:
		return fmt.Sprintf("%v: %v", ErrMalformedInput, e.Err)
	case FailMissingSchemaField:
		return ErrMissingSchemaField.Error()
	case FailUnsupportedSchema:
		return fmt.Sprintf("%v: %q", ErrUnsupportedSchema, e.Identifier)
	case FailSchemaViolation:
		return fmt.Sprintf("%v for %s: %s", ErrSchemaViolation, e.Identifier, strings.ReplaceAll(e.Report().String(), "\n", "; "))
	}
	msg := fmt.Sprint(e.Err)
	if !errors.Is(e.Err, ErrSchemaValidationSystem) {
		msg = fmt.Sprintf("%v: %s", ErrSchemaValidationSystem, msg)
	}
	if e.Identifier != "" {
		return fmt.Sprintf("%s (%s)", msg, e.Identifier)
	}
	return msg
}

// Unwrap exposes the sentinel matching Kind and the underlying cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Report synthesizes the error report of a schema violation. It is empty for
// every other kind.
func (e *Error) Report() report.Report {
	return report.Build(e.Failure)
}

// KindOf classifies err. Errors not produced by a Validator are FailSystem.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailNone
	}
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return FailSystem
}
