// Package jsonschema adapts JSON Schema engines to the failure tree consumed
// by the report package.
package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"slices"
	"strconv"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hatsunemiku3939/docschema/pkg/report"
)

// Evaluator evaluates a decoded document against the schema with the given
// identifier. A nil node means the document is valid.
type Evaluator interface {
	Evaluate(identifier string, doc any) (*report.FailureNode, error)
}

// TreeEvaluator evaluates documents and keeps the full tree of nested causes.
// It is safe for concurrent use.
type TreeEvaluator struct {
	schemas map[string]*jsv.Schema
	printer *message.Printer
}

// NewTreeEvaluator compiles the root schemas named by identifiers. References
// between schemas are resolved by loader only.
func NewTreeEvaluator(loader FSLoader, identifiers ...string) (*TreeEvaluator, error) {
	c := jsv.NewCompiler()
	c.DefaultDraft(jsv.Draft7)
	c.AssertFormat()
	c.UseLoader(loader)

	e := &TreeEvaluator{
		schemas: make(map[string]*jsv.Schema, len(identifiers)),
		printer: message.NewPrinter(language.English),
	}
	for _, id := range identifiers {
		sch, err := c.Compile(id)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidSchema, id, err)
		}
		e.schemas[id] = sch
	}
	return e, nil
}

// NewTreeEvaluatorFS is a shorthand for NewTreeEvaluator(FSLoader{fsys, prefix}, identifiers...).
func NewTreeEvaluatorFS(fsys fs.FS, prefix string, identifiers ...string) (*TreeEvaluator, error) {
	return NewTreeEvaluator(FSLoader{FS: fsys, Prefix: prefix}, identifiers...)
}

// Evaluate implements Evaluator.
func (e *TreeEvaluator) Evaluate(identifier string, doc any) (*report.FailureNode, error) {
	sch, ok := e.schemas[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, identifier)
	}

	err := sch.Validate(doc)
	if err == nil {
		return nil, nil
	}

	var ve *jsv.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidationSystem, err)
	}
	return e.convert(ve, doc), nil
}

// convert maps a validation error and its causes onto failure nodes.
func (e *TreeEvaluator) convert(ve *jsv.ValidationError, doc any) *report.FailureNode {
	keyword, args := describe(ve.ErrorKind)
	value, _ := Lookup(doc, ve.InstanceLocation)

	n := &report.FailureNode{
		Keyword: keyword,
		Path:    slices.Clone(ve.InstanceLocation),
		Args:    args,
		Value:   value,
		Message: ve.ErrorKind.LocalizedString(e.printer),
	}
	for _, cause := range sortCauses(ve.Causes) {
		n.Children = append(n.Children, e.convert(cause, doc))
	}
	return n
}

// describe returns the keyword and message arguments of an error kind.
func describe(ek jsv.ErrorKind) (string, map[string]any) {
	switch k := ek.(type) {
	case *kind.Required:
		return "required", map[string]any{"missing": k.Missing}
	case *kind.Type:
		return "type", map[string]any{"expected": k.Want, "used": k.Got}
	case *kind.AdditionalProperties:
		return report.KeywordAdditionalProperties, map[string]any{"properties": k.Properties}
	case *kind.MinLength:
		return "minLength", map[string]any{"min": k.Want, "actual": k.Got}
	case *kind.MaxLength:
		return "maxLength", map[string]any{"max": k.Want, "actual": k.Got}
	case *kind.Minimum:
		return "minimum", map[string]any{"min": ratNumber(k.Want), "actual": ratNumber(k.Got)}
	case *kind.Maximum:
		return "maximum", map[string]any{"max": ratNumber(k.Want), "actual": ratNumber(k.Got)}
	case *kind.Pattern:
		return "pattern", map[string]any{"pattern": k.Want, "actual": k.Got}
	case *kind.Format:
		return "format", map[string]any{"format": k.Want, "actual": k.Got}
	case *kind.Const:
		return report.KeywordConst, map[string]any{"expected": k.Want, "actual": k.Got}
	case *kind.Enum:
		return "enum", map[string]any{"expected": k.Want, "actual": k.Got}
	case *kind.OneOf:
		return report.KeywordOneOf, nil
	case *kind.AnyOf:
		return report.KeywordAnyOf, nil
	case *kind.AllOf:
		return "allOf", nil
	}

	if kp := ek.KeywordPath(); len(kp) > 0 {
		return kp[len(kp)-1], nil
	}
	return "", nil
}

// ratNumber renders a schema bound in its shortest decimal form.
func ratNumber(r *big.Rat) any {
	if r == nil {
		return nil
	}
	if r.IsInt() {
		return json.Number(r.Num().String())
	}
	f, _ := r.Float64()
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}
