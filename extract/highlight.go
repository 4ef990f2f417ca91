package extract

import (
	"strings"

	"github.com/hupe1980/lexigo/index"
)

// HighlighterConfig selects the fields to highlight and the fragment shape.
type HighlighterConfig struct {
	Fields []string
	// PreTag and PostTag wrap every matched term. Default "<em>" and "</em>".
	PreTag  string
	PostTag string
	// FragmentSize is the target fragment length in bytes. Zero keeps the whole value.
	FragmentSize int
	// MaxFragments caps the fragments per field. Default 3.
	MaxFragments int
}

func (c HighlighterConfig) withDefaults() HighlighterConfig {
	if c.PreTag == "" && c.PostTag == "" {
		c.PreTag, c.PostTag = "<em>", "</em>"
	}
	if c.MaxFragments <= 0 {
		c.MaxFragments = 3
	}
	return c
}

// HighlightProjection projects map[string][]string: per configured field, the
// fragments of its stored text with query terms tagged. Fields without a
// match are omitted.
type HighlightProjection struct {
	base
	// Config overrides the plan-level highlighter when set.
	Config *HighlighterConfig
}

// Highlight returns a highlight projection. A nil cfg uses the plan's highlighter.
func Highlight(cfg *HighlighterConfig) HighlightProjection {
	return HighlightProjection{Config: cfg}
}

func (p HighlightProjection) Extract(hc *HitContext) (any, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = hc.Highlighter()
	}
	out := map[string][]string{}
	if cfg == nil || len(cfg.Fields) == 0 {
		return out, nil
	}
	c := cfg.withDefaults()

	fields, err := hc.Stored()
	if err != nil {
		return nil, err
	}
	for _, f := range c.Fields {
		text, ok := fields[f].(string)
		if !ok {
			continue
		}
		terms := queryTerms(hc.Query(), f, nil)
		if len(terms) == 0 {
			continue
		}
		if frags := fragments(text, terms, c); len(frags) > 0 {
			out[f] = frags
		}
	}
	return out, nil
}

// queryTerms collects the analyzed terms that positive clauses of q match in field.
func queryTerms(q index.Query, field string, dst map[string]struct{}) map[string]struct{} {
	if dst == nil {
		dst = map[string]struct{}{}
	}
	switch q := q.(type) {
	case index.Match:
		if q.Field == field {
			for _, t := range index.Analyze(q.Text) {
				dst[t] = struct{}{}
			}
		}
	case index.Term:
		if q.Field == field {
			dst[strings.ToLower(q.Value)] = struct{}{}
		}
	case index.Bool:
		for _, group := range [][]index.Query{q.Must, q.Should, q.Filter} {
			for _, c := range group {
				queryTerms(c, field, dst)
			}
		}
	case index.Parameterized:
		queryTerms(q.Query, field, dst)
	}
	return dst
}

type span struct{ start, end int }

func fragments(text string, terms map[string]struct{}, c HighlighterConfig) []string {
	var hits []span
	for _, tok := range index.Tokens(text) {
		if _, ok := terms[tok.Term]; ok {
			hits = append(hits, span{tok.Start, tok.End})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	if c.FragmentSize <= 0 || len(text) <= c.FragmentSize {
		return []string{tag(text, 0, len(text), hits, c)}
	}

	var windows []span
	for _, h := range hits {
		pad := max(0, (c.FragmentSize-(h.end-h.start))/2)
		w := span{start: wordStart(text, max(0, h.start-pad)), end: wordEnd(text, min(len(text), h.end+pad))}
		if n := len(windows); n > 0 && w.start <= windows[n-1].end {
			windows[n-1].end = max(windows[n-1].end, w.end)
			continue
		}
		if len(windows) == c.MaxFragments {
			break
		}
		windows = append(windows, w)
	}

	out := make([]string, 0, len(windows))
	for _, w := range windows {
		out = append(out, strings.TrimSpace(tag(text, w.start, w.end, hits, c)))
	}
	return out
}

// tag renders text[from:to] with every hit inside the range wrapped.
func tag(text string, from, to int, hits []span, c HighlighterConfig) string {
	var b strings.Builder
	pos := from
	for _, h := range hits {
		if h.start < from || h.end > to {
			continue
		}
		b.WriteString(text[pos:h.start])
		b.WriteString(c.PreTag)
		b.WriteString(text[h.start:h.end])
		b.WriteString(c.PostTag)
		pos = h.end
	}
	b.WriteString(text[pos:to])
	return b.String()
}

// wordStart moves i back to the start of the word it falls in.
func wordStart(text string, i int) int {
	for i > 0 && text[i-1] != ' ' {
		i--
	}
	return i
}

// wordEnd moves i forward to the end of the word it falls in.
func wordEnd(text string, i int) int {
	for i < len(text) && text[i] != ' ' {
		i++
	}
	return i
}
