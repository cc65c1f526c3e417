package jsonschema

import "errors"

var (
	ErrSchemaValidationSystem = errors.New("schema validation system error")
	ErrInvalidSchema          = errors.New("invalid schema")
	ErrUnknownSchema          = errors.New("unknown schema")
	ErrMalformedDocument      = errors.New("malformed document")
)
