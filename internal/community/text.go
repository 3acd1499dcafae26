package community

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const zeroWidthNonJoiner = '\u200c'

// foldText applies compatibility normalization and case folding so that
// visually equivalent spellings compare equal.
func foldText(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == zeroWidthNonJoiner
}

// tokenize splits folded text into words.
func tokenize(s string) []string {
	return strings.FieldsFunc(foldText(s), func(r rune) bool { return !isWordRune(r) })
}

// NormalizeTerm canonicalizes a skill, tag, or interest for comparison.
func NormalizeTerm(s string) string {
	return strings.Join(tokenize(s), " ")
}

func termSet(terms []string) map[string]struct{} {
	out := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if n := NormalizeTerm(t); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

// sharedTerms returns the entries of a that also appear in b after normalization, in a's order.
func sharedTerms(a, b []string) []string {
	want := termSet(b)
	seen := make(map[string]struct{})
	var out []string
	for _, t := range a {
		n := NormalizeTerm(t)
		if n == "" {
			continue
		}
		if _, ok := want[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, t)
	}
	return out
}
