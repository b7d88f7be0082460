package tab

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const globMeta = "*?[]"

// slashStandIn replaces '/' in both pattern and name so '*' and '?' cross it.
const slashStandIn = "\x00"

// Filter is normalized user filter text.
//
// Blank text matches everything. Text without glob metacharacters matches
// as a case-sensitive substring. Anything else is a shell-style glob:
// '*' and '?' match any character including '/', braces and backslashes are
// literal, and an unclosed '[' is a literal bracket.
type Filter struct {
	text    string
	glob    bool
	pattern string
}

// ParseFilter normalizes raw filter text.
func ParseFilter(text string) Filter {
	stripped := strings.TrimSpace(text)
	f := Filter{text: stripped, glob: strings.ContainsAny(stripped, globMeta)}
	if f.glob {
		f.pattern = translateGlob(stripped)
	}
	return f
}

// translateGlob rewrites a shell-style glob into doublestar syntax.
func translateGlob(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		c := text[i]
		switch c {
		case '\\', '{', '}':
			b.WriteByte('\\')
			b.WriteByte(c)
			i++
		case '/':
			b.WriteString(slashStandIn)
			i++
		case '[':
			end := classEnd(text, i)
			if end < 0 {
				b.WriteString(`\[`)
				i++
				continue
			}
			writeClass(&b, text[i+1:end])
			i = end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// classEnd returns the index of the ']' closing the class opened at i, or -1.
// A ']' right after '[' or '[!' belongs to the class.
func classEnd(text string, i int) int {
	j := i + 1
	if j < len(text) && text[j] == '!' {
		j++
	}
	if j < len(text) && text[j] == ']' {
		j++
	}
	for j < len(text) && text[j] != ']' {
		j++
	}
	if j >= len(text) {
		return -1
	}
	return j
}

func writeClass(b *strings.Builder, body string) {
	b.WriteByte('[')
	if strings.HasPrefix(body, "!") {
		b.WriteByte('!')
		body = body[1:]
	}
	for k := 0; k < len(body); k++ {
		c := body[k]
		switch {
		case c == '\\' || c == ']' || (k == 0 && c == '^'):
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '/':
			b.WriteString(slashStandIn)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(']')
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.text == ""
}

// Pattern returns the equivalent glob pattern, "" for an empty filter.
func (f Filter) Pattern() string {
	switch {
	case f.text == "":
		return ""
	case f.glob:
		return f.text
	default:
		return "*" + f.text + "*"
	}
}

// Match tests name against the filter. A pattern doublestar cannot
// validate falls back to an exact comparison.
func (f Filter) Match(name string) bool {
	switch {
	case f.text == "":
		return true
	case !f.glob:
		return strings.Contains(name, f.text)
	case !doublestar.ValidatePattern(f.pattern):
		return name == f.text
	}
	return doublestar.MatchUnvalidated(f.pattern, strings.ReplaceAll(name, "/", slashStandIn))
}

// Apply keeps the names matching the filter, preserving order.
func (f Filter) Apply(names []string) []string {
	if f.IsEmpty() {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if f.Match(name) {
			out = append(out, name)
		}
	}
	return out
}
