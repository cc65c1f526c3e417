package jsonschema

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// sortCauses orders sibling causes by instance location, then by schema
// location. Both engines walk object properties in map order, so the raw order
// differs between runs.
func sortCauses(causes []*jsv.ValidationError) []*jsv.ValidationError {
	out := slices.Clone(causes)
	slices.SortStableFunc(out, func(a, b *jsv.ValidationError) int {
		if c := comparePath(a.InstanceLocation, b.InstanceLocation); c != 0 {
			return c
		}
		if c := comparePath(strings.Split(a.SchemaURL, "/"), strings.Split(b.SchemaURL, "/")); c != 0 {
			return c
		}
		return comparePath(a.ErrorKind.KeywordPath(), b.ErrorKind.KeywordPath())
	})
	return out
}

// comparePath compares two paths segment by segment. Numeric segments compare
// as numbers so "lines/2" sorts before "lines/10".
func comparePath(a, b []string) int {
	for i := range min(len(a), len(b)) {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareSegment(a, b string) int {
	if a == b {
		return 0
	}
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(x, y)
	}
	return strings.Compare(a, b)
}
