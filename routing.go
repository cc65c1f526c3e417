package docschema

import "strings"

// ExactMatchPolicy selects the schema whose identifier equals the $schema
// value byte for byte.
type ExactMatchPolicy struct{}

// Decide returns the exact key if present; otherwise empty.
func (ExactMatchPolicy) Decide(identifier string, available []SchemaKey) SchemaKey {
	for _, k := range available {
		if string(k) == identifier {
			return k
		}
	}
	return ""
}

// TrimmedMatchPolicy is ExactMatchPolicy after dropping surrounding
// whitespace and a trailing "#" or "/" from the identifier.
type TrimmedMatchPolicy struct{}

// Decide returns the matching key if present; otherwise empty.
func (TrimmedMatchPolicy) Decide(identifier string, available []SchemaKey) SchemaKey {
	id := strings.TrimSpace(identifier)
	id = strings.TrimSuffix(id, "#")
	id = strings.TrimSuffix(id, "/")
	return ExactMatchPolicy{}.Decide(id, available)
}
