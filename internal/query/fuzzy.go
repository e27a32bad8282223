package query

import "strings"

// FuzzyMatch reports whether every character of query appears in text in
// order, not necessarily contiguously, ignoring case. An empty query
// matches everything; a query longer than the text matches nothing.
func FuzzyMatch(query, text string) bool {
	if query == "" {
		return true
	}
	if len(query) > len(text) {
		return false
	}

	q := strings.ToLower(query)
	t := strings.ToLower(text)

	qIdx := 0

	for tIdx := 0; tIdx < len(t) && qIdx < len(q); tIdx++ {
		if q[qIdx] == t[tIdx] {
			qIdx++
		}
	}

	return qIdx == len(q)
}
