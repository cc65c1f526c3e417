package docschema

import (
	"errors"

	"github.com/hatsunemiku3939/docschema/pkg/jsonschema"
)

var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrMissingSchemaField = errors.New("missing $schema field")
	ErrUnsupportedSchema  = errors.New("unsupported schema")
	ErrSchemaViolation    = errors.New("schema validation failed")
	ErrInvalidConfig      = errors.New("invalid config")
)

var (
	// ErrSchemaValidationSystem marks failures of the evaluator itself.
	ErrSchemaValidationSystem = jsonschema.ErrSchemaValidationSystem
	// ErrInvalidSchema is returned by New when a root schema fails to compile.
	ErrInvalidSchema = jsonschema.ErrInvalidSchema
)
