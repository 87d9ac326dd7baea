package search

import (
	"html"
	"html/template"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the smallest query token that gets highlighted. Shorter
// tokens ("a", "of", "is") match too much text to be useful.
const minTokenLen = 3

// Highlight wraps every case-insensitive occurrence of each query token in a
// <mark> element. Tokens shorter than three runes are ignored. Matching runs
// on the raw text; each segment is HTML-escaped as it is emitted, so entity
// text like "&amp;" is never matched and the returned value is safe to render
// without further escaping. Overlapping matches are resolved so that each
// character is wrapped at most once and marks never nest.
func Highlight(text, query string) template.HTML {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return template.HTML(html.EscapeString(text))
	}

	spans := matchSpans(text, tokens)
	if len(spans) == 0 {
		return template.HTML(html.EscapeString(text))
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*len("<mark></mark>"))
	pos := 0
	for _, sp := range spans {
		b.WriteString(html.EscapeString(text[pos:sp.start]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[sp.start:sp.end]))
		b.WriteString("</mark>")
		pos = sp.end
	}
	b.WriteString(html.EscapeString(text[pos:]))
	return template.HTML(b.String())
}

// queryTokens splits query into distinct lowercase tokens of at least
// minTokenLen runes, with surrounding punctuation trimmed.
func queryTokens(query string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, f := range strings.Fields(query) {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		tok = strings.ToLower(tok)
		if utf8.RuneCountInString(tok) < minTokenLen {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

type span struct {
	start, end int
}

// matchSpans finds every occurrence of every token in text
// (case-insensitively) and returns a sorted, non-overlapping span list with
// byte offsets into text. Where occurrences of different tokens overlap, the
// earlier-starting (and on ties, longer) span wins.
//
// Offsets are found by folding text rune by rune, never by indexing into a
// separately lowercased copy: lowercasing can change a rune's byte length,
// which would misalign the offsets.
func matchSpans(text string, tokens []string) []span {
	var spans []span
	for _, tok := range tokens {
		needle := []rune(tok)
		for start := 0; start < len(text); {
			if end, ok := matchAt(text, start, needle); ok {
				spans = append(spans, span{start: start, end: end})
				start = end
				continue
			}
			_, size := utf8.DecodeRuneInString(text[start:])
			start += size
		}
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	out := spans[:1]
	for _, sp := range spans[1:] {
		if sp.start < out[len(out)-1].end {
			continue // overlaps the previous winner
		}
		out = append(out, sp)
	}
	return out
}

// matchAt reports whether the lowercase needle matches text at byte offset
// start, comparing rune-wise with unicode.ToLower, and returns the end byte
// offset of the match in text.
func matchAt(text string, start int, needle []rune) (int, bool) {
	pos := start
	for _, want := range needle {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != want {
			return 0, false
		}
		pos += size
	}
	return pos, true
}
