package jsonschema

import (
	"bytes"
	"fmt"
	"strconv"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// DecodeDocument parses JSON text into the generic value both evaluators
// accept. Numbers are kept as json.Number so no precision is lost.
func DecodeDocument(b []byte) (any, error) {
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

// Lookup returns the value found at path inside doc.
func Lookup(doc any, path []string) (any, bool) {
	cur := doc
	for _, seg := range path {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
