package docschema

import (
	"io/fs"
	"log/slog"
)

// Engine selects the JSON Schema engine behind a Validator.
type Engine int

const (
	// EngineTree keeps nested causes, which enables enum consolidation.
	EngineTree Engine = iota
	// EngineFlat reports leaf failures only.
	EngineFlat
)

// Option configures a Validator at construction time.
type Option func(*Validator)

// WithConfig replaces the default schema configuration.
func WithConfig(cfg Config) Option {
	return func(v *Validator) { v.cfg = cfg.clone() }
}

// WithSchemaFS resolves schema identifiers against fsys instead of the
// bundled schemas. File names are identifiers without the config prefix,
// plus ".json".
func WithSchemaFS(fsys fs.FS) Option {
	return func(v *Validator) { v.schemaFS = fsys }
}

// WithEngine selects the engine used when no Evaluator is supplied.
func WithEngine(e Engine) Option {
	return func(v *Validator) { v.engine = e }
}

// WithEvaluator sets a custom evaluator. The schema FS and engine are ignored.
func WithEvaluator(e Evaluator) Option {
	return func(v *Validator) { v.evaluator = e }
}

// WithRoutingPolicy sets a custom routing policy for $schema dispatch.
// A nil policy keeps ExactMatchPolicy.
func WithRoutingPolicy(p RoutingPolicy) Option {
	return func(v *Validator) { v.routing = p }
}

// WithLogger sets the logger used for debug output. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}
