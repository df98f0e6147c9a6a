package novelty

import (
	"regexp"
	"strings"
)

var (
	queryOrFragmentRe = regexp.MustCompile(`[?#].*$`)
	nonTokenRe        = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// TokenSet is an unordered set of title tokens
type TokenSet map[string]struct{}

// NormalizeURL strips query string, fragment and trailing slashes.
// Links are compared for deduplication in this form only.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	u = queryOrFragmentRe.ReplaceAllString(u, "")
	return strings.TrimRight(u, "/")
}

// Tokens lowercases s, drops everything except ascii letters, digits and whitespace
// and returns the set of remaining words longer than two characters
func Tokens(s string) TokenSet {
	s = nonTokenRe.ReplaceAllString(strings.ToLower(s), " ")
	res := TokenSet{}
	for _, p := range strings.Fields(s) {
		if len(p) > 2 {
			res[p] = struct{}{}
		}
	}
	return res
}

// Jaccard returns |a∩b|/|a∪b|, 1 for two empty sets and 0 if only one is empty
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// IsBlocked checks if title contains any of keywords, case-insensitive
func IsBlocked(title string, keywords []string) bool {
	t := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
