package index

import (
	"strings"
	"unicode"
)

// Analyze splits text into lowercase terms on non-letter, non-digit runes.
// Indexing and highlighting share it so both see the same terms.
func Analyze(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Token is one analyzed term with its byte offsets in the source text.
type Token struct {
	Term  string
	Start int
	End   int
}

// Tokens analyzes text like Analyze and keeps the byte offsets of each term.
func Tokens(text string) []Token {
	var out []Token
	start := -1
	for i, r := range text {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			out = append(out, Token{Term: strings.ToLower(text[start:i]), Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Token{Term: strings.ToLower(text[start:]), Start: start, End: len(text)})
	}
	return out
}
