package jsonschema

import (
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/hatsunemiku3939/docschema/pkg/report"
	"github.com/hatsunemiku3939/docschema/schemas"
)

const (
	invoiceID = schemas.Prefix + "bill/invoice"
	orderID   = schemas.Prefix + "bill/order"
)

const testInvoice = `{
	"$schema": "https://schemas.docschema.dev/v0/bill/invoice",
	"type": "standard",
	"code": "INV-001",
	"issue_date": "2024-03-01",
	"currency": "EUR",
	"supplier": {"name": "Provide One S.L.", "tax_id": {"country": "ES", "code": "B98602642"}},
	"customer": {"name": "Sample Consumer", "tax_id": {"country": "DE"}},
	"lines": [{"i": 1, "quantity": "20", "item": {"name": "Development services", "price": "90.00"}}]
}`

// --- Test Helper Functions ---

func testLoader() FSLoader {
	return FSLoader{FS: schemas.FS(), Prefix: schemas.Prefix}
}

func decodeInvoice(t *testing.T, mutate func(doc map[string]any)) any {
	t.Helper()
	doc, err := DecodeDocument([]byte(testInvoice))
	require.NoError(t, err)
	if mutate != nil {
		mutate(doc.(map[string]any))
	}
	return doc
}

func findNode(n *report.FailureNode, match func(*report.FailureNode) bool) *report.FailureNode {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func keywordAt(keyword string, path ...string) func(*report.FailureNode) bool {
	return func(n *report.FailureNode) bool {
		return n.Keyword == keyword && report.JoinPath(n.Path) == report.JoinPath(path)
	}
}

// multiFault breaks three independent enumerations of the test invoice.
func multiFault(d map[string]any) {
	d["currency"] = "XXX"
	d["supplier"].(map[string]any)["tax_id"].(map[string]any)["country"] = "ZZ"
	d["customer"].(map[string]any)["tax_id"].(map[string]any)["country"] = "QQ"
}

// unionPaths lists the paths of oneOf nodes in pre-order.
func unionPaths(n *report.FailureNode) []string {
	var out []string
	if n == nil {
		return out
	}
	if n.Keyword == "oneOf" {
		out = append(out, n.PathString())
	}
	for _, c := range n.Children {
		out = append(out, unionPaths(c)...)
	}
	return out
}

// --- Test Cases ---

func TestFSLoader(t *testing.T) {
	l := testLoader()

	t.Run("loads bundled schema", func(t *testing.T) {
		doc, err := l.Load(invoiceID)
		require.NoError(t, err)
		assert.Equal(t, invoiceID, doc.(map[string]any)["$id"])
	})

	t.Run("ignores fragment", func(t *testing.T) {
		_, err := l.Load(invoiceID + "#/properties/code")
		assert.NoError(t, err)
	})

	t.Run("rejects identifiers outside the prefix", func(t *testing.T) {
		_, err := l.Load("https://example.com/v0/bill/invoice")
		assert.True(t, errors.Is(err, ErrUnknownSchema))
	})

	t.Run("rejects escaping paths", func(t *testing.T) {
		_, err := l.Load(schemas.Prefix + "../secret")
		assert.True(t, errors.Is(err, ErrUnknownSchema))
	})

	t.Run("rejects missing files", func(t *testing.T) {
		_, err := l.Load(schemas.Prefix + "bill/receipt")
		assert.True(t, errors.Is(err, ErrUnknownSchema))
	})

	t.Run("lists identifiers", func(t *testing.T) {
		ids, err := l.Identifiers()
		require.NoError(t, err)
		assert.ElementsMatch(t, schemas.List(), ids)
	})
}

func TestDecodeDocument(t *testing.T) {
	t.Run("keeps numbers exact", func(t *testing.T) {
		doc, err := DecodeDocument([]byte(`{"total": 12.50}`))
		require.NoError(t, err)
		assert.Equal(t, json.Number("12.50"), doc.(map[string]any)["total"])
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := DecodeDocument([]byte(`{"currency": "EUR"`))
		assert.True(t, errors.Is(err, ErrMalformedDocument))
	})
}

func TestLookup(t *testing.T) {
	doc := decodeInvoice(t, nil)

	v, ok := Lookup(doc, []string{"supplier", "tax_id", "country"})
	assert.True(t, ok)
	assert.Equal(t, "ES", v)

	v, ok = Lookup(doc, []string{"lines", "0", "item", "price"})
	assert.True(t, ok)
	assert.Equal(t, "90.00", v)

	_, ok = Lookup(doc, []string{"lines", "3"})
	assert.False(t, ok)
	_, ok = Lookup(doc, []string{"code", "x"})
	assert.False(t, ok)

	v, ok = Lookup(doc, nil)
	assert.True(t, ok)
	assert.Equal(t, doc, v)
}

func TestTreeEvaluator(t *testing.T) {
	e, err := NewTreeEvaluator(testLoader(), invoiceID, orderID)
	require.NoError(t, err)

	t.Run("valid document", func(t *testing.T) {
		node, err := e.Evaluate(invoiceID, decodeInvoice(t, nil))
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("missing required property", func(t *testing.T) {
		doc := decodeInvoice(t, func(d map[string]any) { delete(d, "currency") })

		node, err := e.Evaluate(invoiceID, doc)
		require.NoError(t, err)

		leaf := findNode(node, keywordAt("required"))
		require.NotNil(t, leaf)
		assert.Equal(t, []string{"currency"}, leaf.Args["missing"])
		assert.NotEmpty(t, leaf.Message)
	})

	t.Run("enumeration union keeps const branches", func(t *testing.T) {
		doc := decodeInvoice(t, func(d map[string]any) {
			d["supplier"].(map[string]any)["tax_id"].(map[string]any)["country"] = "ZZ"
		})

		node, err := e.Evaluate(invoiceID, doc)
		require.NoError(t, err)

		union := findNode(node, keywordAt("oneOf", "supplier", "tax_id", "country"))
		require.NotNil(t, union)
		assert.Equal(t, "ZZ", union.Value)
		require.Greater(t, len(union.Children), 10)
		for _, c := range union.Children {
			assert.Equal(t, "const", c.Keyword)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		doc := decodeInvoice(t, func(d map[string]any) { d["code"] = json.Number("7") })

		node, err := e.Evaluate(invoiceID, doc)
		require.NoError(t, err)

		leaf := findNode(node, keywordAt("type", "code"))
		require.NotNil(t, leaf)
		assert.Equal(t, []string{"string"}, leaf.Args["expected"])
	})

	t.Run("causes are ordered by path", func(t *testing.T) {
		doc := decodeInvoice(t, multiFault)
		want := []string{"/currency", "/customer/tax_id/country", "/supplier/tax_id/country"}
		for range 20 {
			node, err := e.Evaluate(invoiceID, doc)
			require.NoError(t, err)
			assert.Equal(t, want, unionPaths(node))
		}
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := e.Evaluate(schemas.Prefix+"envelope", decodeInvoice(t, nil))
		assert.True(t, errors.Is(err, ErrUnknownSchema))
	})
}

func TestNewTreeEvaluator_InvalidSchema(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json": {Data: []byte(`{"$schema": "http://json-schema.org/draft-07/schema#", "type": 12}`)},
	}

	_, err := NewTreeEvaluatorFS(fsys, "https://example.com/", "https://example.com/broken")

	assert.True(t, errors.Is(err, ErrInvalidSchema))
}

func TestFlatEvaluator(t *testing.T) {
	e, err := NewFlatEvaluator(testLoader(), invoiceID)
	require.NoError(t, err)

	t.Run("valid document", func(t *testing.T) {
		node, err := e.Evaluate(invoiceID, decodeInvoice(t, nil))
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("failures become children of the root", func(t *testing.T) {
		doc := decodeInvoice(t, func(d map[string]any) {
			delete(d, "supplier")
			d["extra"] = true
		})

		node, err := e.Evaluate(invoiceID, doc)
		require.NoError(t, err)
		require.NotNil(t, node)

		required := findNode(node, keywordAt("required"))
		require.NotNil(t, required)
		assert.Equal(t, []any{"supplier"}, required.Args["missing"])

		unknown := findNode(node, func(n *report.FailureNode) bool { return n.Keyword == "additionalProperties" })
		require.NotNil(t, unknown)
		assert.Equal(t, []any{"extra"}, unknown.Args["properties"])

		for _, c := range node.Children {
			assert.Empty(t, c.Children)
		}
	})

	t.Run("failed union is a single leaf", func(t *testing.T) {
		node, err := e.Evaluate(invoiceID, decodeInvoice(t, multiFault))
		require.NoError(t, err)
		require.NotNil(t, node)

		require.Len(t, node.Children, 3)
		paths := make([]string, 0, len(node.Children))
		for _, c := range node.Children {
			assert.Equal(t, "oneOf", c.Keyword)
			paths = append(paths, c.PathString())
		}
		assert.Equal(t, []string{"/currency", "/customer/tax_id/country", "/supplier/tax_id/country"}, paths)
		assert.Equal(t, "XXX", node.Children[0].Value)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := e.Evaluate(orderID, decodeInvoice(t, nil))
		assert.True(t, errors.Is(err, ErrUnknownSchema))
	})
}

func TestContextPath(t *testing.T) {
	root := gojsonschema.NewJsonContext("(root)", nil)
	assert.Nil(t, contextPath(nil))
	assert.Nil(t, contextPath(root))

	lines := gojsonschema.NewJsonContext("quantity", gojsonschema.NewJsonContext("0", gojsonschema.NewJsonContext("lines", root)))
	assert.Equal(t, []string{"lines", "0", "quantity"}, contextPath(lines))

	dotted := gojsonschema.NewJsonContext("example.com", gojsonschema.NewJsonContext("meta", root))
	assert.Equal(t, []string{"meta", "example.com"}, contextPath(dotted))
}

func TestDropUnionBranches(t *testing.T) {
	leaves := []*report.FailureNode{
		{Keyword: "const", Path: []string{"currency"}, Args: map[string]any{"expected": "EUR"}},
		{Keyword: "oneOf", Path: []string{"currency"}},
		{Keyword: "const", Path: []string{"head", "dig", "alg"}},
		{Keyword: "required", Path: []string{"currency"}},
	}

	got := dropUnionBranches(leaves)
	require.Len(t, got, 3)
	assert.Equal(t, "oneOf", got[0].Keyword)
	assert.Equal(t, []string{"head", "dig", "alg"}, got[1].Path)
	assert.Equal(t, "required", got[2].Keyword)
}

func TestComparePath(t *testing.T) {
	tests := []struct {
		a, b []string
		want int
	}{
		{[]string{"lines", "2"}, []string{"lines", "10"}, -1},
		{[]string{"currency"}, []string{"customer"}, -1},
		{[]string{"supplier"}, []string{"supplier", "name"}, -1},
		{[]string{"a", "b"}, []string{"a", "b"}, 0},
		{[]string{"oneOf", "10"}, []string{"oneOf", "9"}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, comparePath(tt.a, tt.b), "%v vs %v", tt.a, tt.b)
	}
}

func TestFlatDescribe(t *testing.T) {
	kw, args := flatDescribe("const", map[string]any{"allowed": `"sha256"`})
	assert.Equal(t, "const", kw)
	assert.Equal(t, "sha256", args["expected"])

	kw, args = flatDescribe("invalid_type", map[string]any{"expected": "string", "given": "integer"})
	assert.Equal(t, "type", kw)
	assert.Equal(t, "integer", args["used"])

	kw, args = flatDescribe("array_min_items", nil)
	assert.Equal(t, "array_min_items", kw)
	assert.Nil(t, args)
}
