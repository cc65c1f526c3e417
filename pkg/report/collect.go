package report

import (
	"fmt"
	"strings"
)

// maxEnumOptions is the largest candidate set still listed in a consolidated enum message.
const maxEnumOptions = 10

// maxNodes caps the number of nodes visited in a single failure tree.
const maxNodes = 1 << 20

// entry is a message together with the keyword it was produced from.
type entry struct {
	message string
	keyword string
}

// collection is the raw path-keyed message set built before suppression.
type collection struct {
	order   []string
	entries map[string][]entry
	// truncated is set when the walk stopped at the node limit.
	truncated bool
}

func newCollection() *collection {
	return &collection{entries: make(map[string][]entry)}
}

func (c *collection) add(path, message, keyword string) {
	if _, ok := c.entries[path]; !ok {
		c.order = append(c.order, path)
	}
	c.entries[path] = append(c.entries[path], entry{message: message, keyword: keyword})
}

// collect walks the tree depth first, in pre-order, and records one message per
// leaf failure. Unions of const branches are reported once at the union's path.
// At most limit nodes are visited.
func collect(root *FailureNode, limit int) *collection {
	c := newCollection()
	stack := []*FailureNode{root}
	for visited := 0; len(stack) > 0; visited++ {
		if visited >= limit {
			c.truncated = true
			break
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}

		if msg, ok := consolidateEnum(n); ok {
			c.add(n.PathString(), msg, n.Keyword)
			continue
		}

		if len(n.Children) > 0 {
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
			continue
		}

		c.add(n.PathString(), formatMessage(n), n.Keyword)
	}
	return c
}

// consolidateEnum reports a oneOf/anyOf node whose branches all failed a const
// check as a single invalid-option message.
func consolidateEnum(n *FailureNode) (string, bool) {
	if n.Keyword != KeywordOneOf && n.Keyword != KeywordAnyOf {
		return "", false
	}
	if len(n.Children) == 0 {
		return "", false
	}

	candidates := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if child == nil || child.Keyword != KeywordConst {
			return "", false
		}
		candidates = append(candidates, stringify(child.Args["expected"]))
	}

	actual := stringify(offendingValue(n))
	if len(candidates) > maxEnumOptions {
		return fmt.Sprintf(`The value "%s" is not a valid option`, actual), true
	}
	return fmt.Sprintf(`The value "%s" is not valid. Allowed values: %s`, actual, strings.Join(candidates, listSeparator)), true
}

// offendingValue returns the document value a union was evaluated against.
func offendingValue(n *FailureNode) any {
	if n.Value != nil {
		return n.Value
	}
	for _, child := range n.Children {
		if child.Value != nil {
			return child.Value
		}
		if v, ok := child.Args["actual"]; ok {
			return v
		}
	}
	return nil
}
