package jsonschema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"math/big"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hatsunemiku3939/docschema/pkg/report"
)

// rootField is the field gojsonschema reports for the document root.
const rootField = "(root)"

// FlatEvaluator evaluates documents with gojsonschema. The engine only reports
// leaf failures, so the tree it returns is a root node whose children are the
// individual failures, ordered by path. A failed oneOf/anyOf is reported as a
// single leaf without its branches.
type FlatEvaluator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewFlatEvaluator compiles the root schemas named by identifiers. Every other
// schema file known to loader is registered so cross-file references resolve
// locally.
func NewFlatEvaluator(loader FSLoader, identifiers ...string) (*FlatEvaluator, error) {
	all, err := loader.Identifiers()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	raw := make(map[string][]byte, len(all))
	for _, id := range all {
		b, err := loader.ReadFile(id)
		if err != nil {
			return nil, err
		}
		raw[id] = b
	}

	e := &FlatEvaluator{schemas: make(map[string]*gojsonschema.Schema, len(identifiers))}
	for _, id := range identifiers {
		root, ok := raw[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, id)
		}

		sl := gojsonschema.NewSchemaLoader()
		var refs []gojsonschema.JSONLoader
		for other, b := range raw {
			if other != id {
				refs = append(refs, gojsonschema.NewBytesLoader(b))
			}
		}
		if err := sl.AddSchemas(refs...); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidSchema, id, err)
		}

		schema, err := sl.Compile(gojsonschema.NewBytesLoader(root))
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidSchema, id, err)
		}
		e.schemas[id] = schema
	}
	return e, nil
}

// NewFlatEvaluatorFS is a shorthand for NewFlatEvaluator(FSLoader{fsys, prefix}, identifiers...).
func NewFlatEvaluatorFS(fsys fs.FS, prefix string, identifiers ...string) (*FlatEvaluator, error) {
	return NewFlatEvaluator(FSLoader{FS: fsys, Prefix: prefix}, identifiers...)
}

// Evaluate implements Evaluator.
func (e *FlatEvaluator) Evaluate(identifier string, doc any) (*report.FailureNode, error) {
	schema, ok := e.schemas[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, identifier)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidationSystem, err)
	}
	if result.Valid() {
		return nil, nil
	}

	leaves := make([]*report.FailureNode, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		leaves = append(leaves, flatNode(re))
	}
	leaves = dropUnionBranches(leaves)
	slices.SortStableFunc(leaves, func(a, b *report.FailureNode) int {
		return comparePath(a.Path, b.Path)
	})

	return &report.FailureNode{Value: doc, Message: "document does not match the schema", Children: leaves}, nil
}

func flatNode(re gojsonschema.ResultError) *report.FailureNode {
	keyword, args := flatDescribe(re.Type(), re.Details())
	return &report.FailureNode{
		Keyword: keyword,
		Path:    contextPath(re.Context()),
		Args:    args,
		Value:   re.Value(),
		Message: re.Description(),
	}
}

// dropUnionBranches removes the const and enum failures the engine copies from
// the closest branch of a failed oneOf/anyOf. They describe a single branch,
// not the value, so only the union failure is kept at that path.
func dropUnionBranches(leaves []*report.FailureNode) []*report.FailureNode {
	unions := make(map[string]struct{})
	for _, n := range leaves {
		if n.Keyword == report.KeywordOneOf || n.Keyword == report.KeywordAnyOf {
			unions[n.PathString()] = struct{}{}
		}
	}
	if len(unions) == 0 {
		return leaves
	}
	return slices.DeleteFunc(leaves, func(n *report.FailureNode) bool {
		if n.Keyword != report.KeywordConst && n.Keyword != "enum" {
			return false
		}
		_, ok := unions[n.PathString()]
		return ok
	})
}

// contextSep joins context segments. Property names may contain the engine's
// own "." separator, never a NUL.
const contextSep = "\x00"

// contextPath turns an error context ("(root)", "supplier", "tax_id") into
// path segments without the root marker.
func contextPath(ctx *gojsonschema.JsonContext) []string {
	if ctx == nil {
		return nil
	}
	segments := strings.Split(ctx.String(contextSep), contextSep)
	if len(segments) > 0 && segments[0] == rootField {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return nil
	}
	return segments
}

// flatDescribe maps gojsonschema error types onto schema keywords.
func flatDescribe(typ string, d gojsonschema.ErrorDetails) (string, map[string]any) {
	switch typ {
	case "required":
		return "required", map[string]any{"missing": []any{d["property"]}}
	case "invalid_type":
		return "type", map[string]any{"expected": d["expected"], "used": d["given"]}
	case "additional_property_not_allowed":
		return report.KeywordAdditionalProperties, map[string]any{"properties": []any{d["property"]}}
	case "string_gte":
		return "minLength", map[string]any{"min": d["min"]}
	case "string_lte":
		return "maxLength", map[string]any{"max": d["max"]}
	case "number_gte":
		return "minimum", map[string]any{"min": bigNumber(d["min"])}
	case "number_lte":
		return "maximum", map[string]any{"max": bigNumber(d["max"])}
	case "pattern":
		return "pattern", map[string]any{"pattern": d["pattern"]}
	case "format":
		return "format", map[string]any{"format": d["format"]}
	case "const":
		return report.KeywordConst, map[string]any{"expected": decodeAllowed(d["allowed"])}
	case "enum":
		// The allowed list arrives pre-joined, the engine description reads better.
		return "enum", nil
	case "number_one_of":
		return report.KeywordOneOf, nil
	case "number_any_of":
		return report.KeywordAnyOf, nil
	case "number_all_of":
		return "allOf", nil
	}
	return typ, nil
}

// decodeAllowed turns the JSON text gojsonschema reports for const back into a value.
func decodeAllowed(v any) any {
	var s string
	switch a := v.(type) {
	case string:
		s = a
	case *string:
		if a == nil {
			return nil
		}
		s = *a
	default:
		return v
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return s
	}
	return out
}

func bigNumber(v any) any {
	switch n := v.(type) {
	case *big.Float:
		return json.Number(n.Text('f', -1))
	case *big.Rat:
		return ratNumber(n)
	}
	return v
}
