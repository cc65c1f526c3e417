package docschema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hatsunemiku3939/docschema/pkg/jsonschema"
	"github.com/hatsunemiku3939/docschema/pkg/report"
	"github.com/hatsunemiku3939/docschema/schemas"
)

// SchemaKind names one of the supported root schemas.
type SchemaKind string

const (
	KindEnvelope SchemaKind = "envelope"
	KindInvoice  SchemaKind = "invoice"
	KindOrder    SchemaKind = "order"
)

// ParseSchemaKind maps a user supplied name onto a SchemaKind.
func ParseSchemaKind(s string) (SchemaKind, error) {
	switch k := SchemaKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindEnvelope, KindInvoice, KindOrder:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown schema kind %q", ErrInvalidConfig, s)
}

// SchemaKey is a root schema identifier as it appears in a document's
// $schema field.
type SchemaKey string

// FailureNode is the raw failure tree produced by an Evaluator.
type FailureNode = report.FailureNode

// Report is the path-keyed error report synthesized from a failure tree.
type Report = report.Report

// Evaluator evaluates a decoded document against a root schema.
type Evaluator = jsonschema.Evaluator

// RoutingPolicy selects the root schema for a $schema identifier. An empty
// result means the identifier is not supported.
type RoutingPolicy interface {
	Decide(identifier string, available []SchemaKey) SchemaKey
}

// Config names the root schemas a Validator supports.
type Config struct {
	// BaseURI is the scheme and host shared by every identifier, with a
	// trailing slash.
	BaseURI string
	// Version is the schema set version, the first path segment of every
	// identifier.
	Version string
	// Roots maps each kind to its path below BaseURI + Version.
	Roots map[SchemaKind]string
}

// DefaultConfig returns the configuration of the bundled schema set.
func DefaultConfig() Config {
	return Config{
		BaseURI: schemas.BaseURI,
		Version: schemas.Version,
		Roots: map[SchemaKind]string{
			KindEnvelope: "envelope",
			KindInvoice:  "bill/invoice",
			KindOrder:    "bill/order",
		},
	}
}

// Prefix returns the identifier prefix shared by every schema of the set.
func (c Config) Prefix() string {
	return strings.TrimSuffix(c.BaseURI, "/") + "/" + c.Version + "/"
}

// Identifier returns the full identifier of kind.
func (c Config) Identifier(kind SchemaKind) (SchemaKey, bool) {
	p, ok := c.Roots[kind]
	if !ok {
		return "", false
	}
	return SchemaKey(c.Prefix() + strings.TrimPrefix(p, "/")), true
}

// Kinds returns the configured kinds in lexical order.
func (c Config) Kinds() []SchemaKind {
	return slices.Sorted(maps.Keys(c.Roots))
}

func (c Config) validate() error {
	if c.BaseURI == "" || c.Version == "" {
		return fmt.Errorf("%w: base URI and version are required", ErrInvalidConfig)
	}
	if len(c.Roots) == 0 {
		return fmt.Errorf("%w: no root schemas", ErrInvalidConfig)
	}
	for k, p := range c.Roots {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty path for %s", ErrInvalidConfig, k)
		}
	}
	return nil
}

func (c Config) clone() Config {
	c.Roots = maps.Clone(c.Roots)
	return c
}
