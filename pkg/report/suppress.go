package report

import "strings"

// suppress drops additionalProperties messages reported at a path that also has
// a more specific failure below it. Those come from union backtracking in the
// evaluator and hide the real, nested problem.
func suppress(raw *collection) Report {
	r := Report{messages: make(map[string][]string, len(raw.order))}
	for _, p := range raw.order {
		nested := hasDescendant(p, raw.order)

		var msgs []string
		for _, e := range raw.entries[p] {
			if nested && e.keyword == KeywordAdditionalProperties {
				continue
			}
			msgs = append(msgs, e.message)
		}
		if len(msgs) == 0 {
			continue
		}

		r.paths = append(r.paths, p)
		r.messages[p] = msgs
	}
	return r
}

// hasDescendant reports whether any other path lies strictly below p.
func hasDescendant(p string, paths []string) bool {
	if p == "/" {
		for _, q := range paths {
			if q != "/" && q != "" {
				return true
			}
		}
		return false
	}

	prefix := p + "/"
	for _, q := range paths {
		if q != p && strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}
