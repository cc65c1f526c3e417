// Package report turns a tree of schema validation failures into a compact,
// path-keyed error report.
package report

import "strings"

// Keywords the report treats specially.
const (
	KeywordOneOf                = "oneOf"
	KeywordAnyOf                = "anyOf"
	KeywordConst                = "const"
	KeywordAdditionalProperties = "additionalProperties"
)

// FailureNode is one node of the failure tree produced by a schema evaluator.
// Nodes with children are combinators or wrappers whose real failures live in
// the children; nodes without children are atomic rule failures.
//
// A FailureNode is never modified by this package.
type FailureNode struct {
	// Keyword is the schema keyword that failed, e.g. "required" or "oneOf".
	Keyword string
	// Path locates the failing value from the document root. Array indices
	// are encoded as decimal strings.
	Path []string
	// Args holds keyword specific arguments, see formatMessage.
	Args map[string]any
	// Value is the document value found at Path, when known.
	Value any
	// Message is the evaluator's own description of the failure.
	Message string
	// Children are the nested causes of this failure.
	Children []*FailureNode
}

// PathString returns the normalized path of the node, "/" for the root.
func (n *FailureNode) PathString() string {
	return JoinPath(n.Path)
}

// JoinPath joins path segments with "/". The empty path is rendered as "/".
func JoinPath(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}
