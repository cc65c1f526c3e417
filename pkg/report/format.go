package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

const listSeparator = ", "

// formatMessage renders the message for a leaf failure. It always returns a
// non-empty string: keywords without a template, or without the arguments the
// template needs, fall back to the evaluator's own message.
func formatMessage(n *FailureNode) string {
	if msg, ok := formatKeyword(n.Keyword, n.Args); ok {
		return msg
	}
	if n.Message != "" {
		return n.Message
	}
	if n.Keyword == "" {
		return "Validation failed"
	}
	return fmt.Sprintf("Validation failed for keyword %q", n.Keyword)
}

func formatKeyword(keyword string, args map[string]any) (string, bool) {
	switch keyword {
	case "required":
		if names, ok := list(args, "missing"); ok {
			return "Missing required property: " + names, true
		}
	case "type":
		expected, ok1 := args["expected"]
		used, ok2 := args["used"]
		if ok1 && ok2 {
			return fmt.Sprintf(`Expected type "%s", got "%s"`, typeNames(expected), typeNames(used)), true
		}
	case KeywordAdditionalProperties:
		if names, ok := list(args, "properties"); ok {
			return "Unknown properties: " + names, true
		}
	case "minLength":
		if v, ok := args["min"]; ok {
			return fmt.Sprintf("Must be at least %s characters", stringify(v)), true
		}
	case "maxLength":
		if v, ok := args["max"]; ok {
			return fmt.Sprintf("Must be at most %s characters", stringify(v)), true
		}
	case "minimum":
		if v, ok := args["min"]; ok {
			return fmt.Sprintf("Must be at least %s", stringify(v)), true
		}
	case "maximum":
		if v, ok := args["max"]; ok {
			return fmt.Sprintf("Must be at most %s", stringify(v)), true
		}
	case "pattern":
		return "Value does not match the required pattern", true
	case "format":
		if v, ok := args["format"]; ok {
			return fmt.Sprintf("Value is not a valid %s", stringify(v)), true
		}
	case KeywordConst:
		if v, ok := args["expected"]; ok {
			return "Value must be: " + stringify(v), true
		}
	case "enum":
		if values, ok := list(args, "expected"); ok {
			return "Value must be one of: " + values, true
		}
	}
	return "", false
}

// list renders the list argument name as comma separated values.
func list(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok {
		return "", false
	}
	items := values(v)
	if items == nil {
		return "", false
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = stringify(item)
	}
	return strings.Join(parts, listSeparator), true
}

// values flattens the slice shapes evaluators use for list arguments.
func values(v any) []any {
	switch vs := v.(type) {
	case []any:
		return vs
	case []string:
		out := make([]any, len(vs))
		for i, s := range vs {
			out[i] = s
		}
		return out
	case string:
		return []any{vs}
	}
	return nil
}

// typeNames renders one type name, or several joined with " or ".
func typeNames(v any) string {
	items := values(v)
	if items == nil {
		return stringify(v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = stringify(item)
	}
	return strings.Join(parts, " or ")
}

// stringify renders strings verbatim and everything else as canonical JSON text.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
