package report

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Report maps normalized document paths to the messages found there.
// Paths keep the order in which they were discovered. A Report is immutable.
type Report struct {
	paths     []string
	messages  map[string][]string
	truncated bool
}

// Build synthesizes the report for a failure tree. A nil root yields an empty
// report. Build holds no state, so calling it twice on the same tree yields
// equal reports.
//
// Only the first 1<<20 nodes of the tree, in pre-order, are visited. Failures
// beyond that are left out and Truncated reports true.
func Build(root *FailureNode) Report {
	return build(root, maxNodes)
}

func build(root *FailureNode, limit int) Report {
	if root == nil {
		return Report{}
	}
	c := collect(root, limit)
	r := suppress(c)
	r.truncated = c.truncated
	return r
}

// Truncated reports whether the failure tree exceeded the node limit, so some
// failures are missing from the report.
func (r Report) Truncated() bool { return r.truncated }

// Paths returns the report keys in discovery order.
func (r Report) Paths() []string {
	return slices.Clone(r.paths)
}

// Messages returns the messages recorded for path.
func (r Report) Messages(path string) []string {
	return slices.Clone(r.messages[path])
}

// Has reports whether path is a key of the report.
func (r Report) Has(path string) bool {
	_, ok := r.messages[path]
	return ok
}

// Len returns the number of paths in the report.
func (r Report) Len() int { return len(r.paths) }

// Empty reports whether the report has no entries.
func (r Report) Empty() bool { return len(r.paths) == 0 }

// Map returns a copy of the report as a plain map.
func (r Report) Map() map[string][]string {
	m := make(map[string][]string, len(r.paths))
	for _, p := range r.paths {
		m[p] = slices.Clone(r.messages[p])
	}
	return m
}

// String renders one "path: message" line per message.
func (r Report) String() string {
	var b strings.Builder
	for _, p := range r.paths {
		for _, msg := range r.messages[p] {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p)
			b.WriteString(": ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

// MarshalJSON encodes the report as a JSON object whose keys follow the report order.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r.paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.messages[p])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
