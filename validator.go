// Package docschema validates business documents against their JSON Schemas
// and turns validation failures into a compact, path-keyed error report.
package docschema

import (
	"fmt"
	"io/fs"
	"log/slog"

	dlog "github.com/hatsunemiku3939/docschema/internal/log"
	"github.com/hatsunemiku3939/docschema/pkg/jsonschema"
	"github.com/hatsunemiku3939/docschema/pkg/report"
	"github.com/hatsunemiku3939/docschema/schemas"
)

// envelopeDocField holds the wrapped document of an envelope.
const envelopeDocField = "doc"

// Validator validates documents against the configured root schemas.
// It is safe for concurrent use.
type Validator struct {
	cfg       Config
	schemaFS  fs.FS
	engine    Engine
	evaluator Evaluator
	routing   RoutingPolicy
	logger    *slog.Logger

	keys  []SchemaKey
	kinds map[SchemaKey]SchemaKind
}

// New creates a Validator. Root schemas are compiled up front so a broken
// schema set fails here rather than on the first document.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		cfg:      DefaultConfig(),
		schemaFS: schemas.FS(),
		engine:   EngineTree,
		routing:  ExactMatchPolicy{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.routing == nil {
		v.routing = ExactMatchPolicy{}
	}
	if v.logger == nil {
		v.logger = slog.New(slog.DiscardHandler)
	}
	if v.schemaFS == nil {
		v.schemaFS = schemas.FS()
	}
	if err := v.cfg.validate(); err != nil {
		return nil, err
	}

	v.kinds = make(map[SchemaKey]SchemaKind, len(v.cfg.Roots))
	ids := make([]string, 0, len(v.cfg.Roots))
	for _, kind := range v.cfg.Kinds() {
		key, _ := v.cfg.Identifier(kind)
		v.keys = append(v.keys, key)
		v.kinds[key] = kind
		ids = append(ids, string(key))
	}

	if v.evaluator == nil {
		loader := jsonschema.FSLoader{FS: v.schemaFS, Prefix: v.cfg.Prefix()}
		var err error
		switch v.engine {
		case EngineFlat:
			v.evaluator, err = jsonschema.NewFlatEvaluator(loader, ids...)
		default:
			v.evaluator, err = jsonschema.NewTreeEvaluator(loader, ids...)
		}
		if err != nil {
			return nil, fmt.Errorf("compile schemas: %w", err)
		}
	}
	return v, nil
}

// Config returns the configuration the Validator was built with.
func (v *Validator) Config() Config {
	return v.cfg.clone()
}

// Validate parses doc and validates it against the root schema named by its
// $schema field. It returns nil for a valid document and an *Error otherwise.
func (v *Validator) Validate(doc []byte) error {
	value, err := jsonschema.DecodeDocument(doc)
	if err != nil {
		return &Error{Kind: FailMalformedInput, Err: err}
	}
	return v.ValidateValue(value)
}

// ValidateAgainst parses doc and validates it against kind, ignoring $schema.
func (v *Validator) ValidateAgainst(doc []byte, kind SchemaKind) error {
	value, err := jsonschema.DecodeDocument(doc)
	if err != nil {
		return &Error{Kind: FailMalformedInput, Err: err}
	}
	return v.ValidateValueAgainst(value, kind)
}

// ValidateValue is Validate for an already decoded document. Numbers should
// be json.Number values, as produced by DecodeDocument.
func (v *Validator) ValidateValue(doc any) error {
	id, ok := SchemaField(doc)
	if !ok {
		return &Error{Kind: FailMissingSchemaField}
	}
	key, ok := v.route(id)
	if !ok {
		v.logger.Debug("unsupported schema", dlog.SchemaKey, id)
		return &Error{Kind: FailUnsupportedSchema, Identifier: id}
	}
	return v.evaluate(key, doc)
}

// ValidateValueAgainst is ValidateAgainst for an already decoded document.
func (v *Validator) ValidateValueAgainst(doc any, kind SchemaKind) error {
	key, ok := v.cfg.Identifier(kind)
	if !ok {
		return &Error{Kind: FailUnsupportedSchema, Identifier: string(kind)}
	}
	return v.evaluate(key, doc)
}

func (v *Validator) route(id string) (SchemaKey, bool) {
	key := v.routing.Decide(id, v.keys)
	if key == "" {
		return "", false
	}
	_, ok := v.kinds[key]
	return key, ok
}

func (v *Validator) evaluate(key SchemaKey, doc any) error {
	kind := v.kinds[key]
	v.logger.Debug("evaluating document", dlog.SchemaKey, string(key), dlog.KindKey, string(kind))

	node, err := v.evaluator.Evaluate(string(key), doc)
	if err != nil {
		return &Error{Kind: FailSystem, Identifier: string(key), Err: err}
	}

	if kind == KindEnvelope {
		inner, err := v.evaluateWrapped(doc)
		if err != nil {
			return err
		}
		node = combine(node, inner)
	}

	if node == nil {
		return nil
	}
	return &Error{Kind: FailSchemaViolation, Identifier: string(key), Failure: node}
}

// evaluateWrapped validates the document carried by an envelope against its
// own $schema. Failure paths are relative to the envelope.
func (v *Validator) evaluateWrapped(envelope any) (*FailureNode, error) {
	obj, ok := envelope.(map[string]any)
	if !ok {
		return nil, nil
	}
	inner, ok := obj[envelopeDocField]
	if !ok {
		return nil, nil
	}
	id, ok := SchemaField(inner)
	if !ok {
		return nil, nil
	}
	key, ok := v.route(id)
	if !ok || v.kinds[key] == KindEnvelope {
		v.logger.Debug("skipping wrapped document", dlog.SchemaKey, id)
		return nil, nil
	}

	v.logger.Debug("evaluating wrapped document", dlog.SchemaKey, string(key), dlog.KindKey, string(v.kinds[key]))
	node, err := v.evaluator.Evaluate(string(key), inner)
	if err != nil {
		return nil, &Error{Kind: FailSystem, Identifier: string(key), Err: err}
	}
	return rebase(node, envelopeDocField), nil
}

// SchemaField returns the non-empty string value of a document's $schema field.
func SchemaField(doc any) (string, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := obj["$schema"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// BuildReport synthesizes the error report of a failure tree.
func BuildReport(root *FailureNode) Report {
	return report.Build(root)
}

func combine(a, b *FailureNode) *FailureNode {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &FailureNode{Keyword: "allOf", Children: []*FailureNode{a, b}}
}

// rebase returns a copy of n with prefix prepended to every path.
func rebase(n *FailureNode, prefix ...string) *FailureNode {
	if n == nil {
		return nil
	}
	out := *n
	out.Path = append(append(make([]string, 0, len(prefix)+len(n.Path)), prefix...), n.Path...)
	if len(n.Children) > 0 {
		out.Children = make([]*FailureNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = rebase(c, prefix...)
		}
	}
	return &out
}
