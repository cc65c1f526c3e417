// Package policy decides whether a consumed document is removed from its queue.
package policy

import (
	"context"

	"github.com/hatsunemiku3939/docschema"
)

// Result represents the delete decision and error to attach.
type Result struct {
	ShouldDelete bool
	Error        error
}

// Policy decides the final Result given a failure classification and current decision.
type Policy interface {
	Decide(ctx context.Context, kind docschema.FailureKind, inner error, current Result) Result
}

// ImmediateDeletePolicy deletes documents that can never become valid.
// Evaluator failures keep the message so it is retried.
type ImmediateDeletePolicy struct{}

// Decide implements ImmediateDeletePolicy behavior.
func (p ImmediateDeletePolicy) Decide(_ context.Context, kind docschema.FailureKind, inner error, current Result) Result {
	switch kind {
	case docschema.FailNone:
		return current
	case docschema.FailMalformedInput, docschema.FailMissingSchemaField,
		docschema.FailUnsupportedSchema, docschema.FailSchemaViolation:
		current.ShouldDelete = true
	case docschema.FailSystem:
		current.ShouldDelete = false
	}
	if inner != nil && current.Error == nil {
		current.Error = inner
	}
	return current
}

// SQSRedrivePolicy always returns ShouldDelete=false for failures so SQS redrive
// moves rejected documents to a dead-letter queue.
type SQSRedrivePolicy struct{}

// Decide implements the Policy interface for SQS redrive delegation.
func (p SQSRedrivePolicy) Decide(_ context.Context, kind docschema.FailureKind, inner error, current Result) Result {
	if kind == docschema.FailNone {
		return current
	}
	current.ShouldDelete = false
	if inner != nil && current.Error == nil {
		current.Error = inner
	}
	return current
}
