// Package refindex finds expression-engine entries that reference a parent
// container or one of its children by scanning expression text.
//
// Matching is purely textual. Decorated references ("<<Params>>.Length",
// "Params.Length") are matched as whole tokens; bare child names are matched
// with identifier boundaries and only inside the parent's own storage.
package refindex

import (
	"regexp"
	"strings"
)

// Search holds the compiled patterns for one parent/child lookup.
type Search struct {
	// Patterns are literal decorated references, matched as whole tokens.
	Patterns []string
	// Internal matches the bare child name; nil for parent-only searches.
	Internal *regexp.Regexp
}

// NewSearch builds the patterns for a parent as it is written in expressions
// (its name, or label for spreadsheets) and an optional child.
func NewSearch(parentToken, child string) Search {
	if child == "" {
		return Search{Patterns: []string{"<<" + parentToken + ">>"}}
	}
	return Search{
		Patterns: []string{
			"<<" + parentToken + ">>." + child,
			parentToken + "." + child,
		},
		Internal: WordRegexp(child),
	}
}

// WordRegexp matches name when it is not embedded in a longer identifier.
// RE2 has no lookbehind, so the boundaries are consumed; this is equivalent
// for existence checks.
func WordRegexp(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^A-Za-z0-9_])` + regexp.QuoteMeta(name) + `(?:$|[^A-Za-z0-9_])`)
}

// MatchesDecorated reports whether text contains any decorated pattern as a token.
func (s Search) MatchesDecorated(text string) bool {
	for _, p := range s.Patterns {
		if ContainsToken(text, p) {
			return true
		}
	}
	return false
}

// MatchesInternal reports whether text mentions the bare child name.
func (s Search) MatchesInternal(text string) bool {
	return s.Internal != nil && s.Internal.MatchString(text)
}

// ContainsToken reports whether pattern occurs in text without being glued to
// identifier characters on a side where the pattern itself starts or ends
// with one. "<<Params>>.x" therefore never matches "<<Params>>.xy", and
// "Params.x" never matches "MyParams.x".
func ContainsToken(text, pattern string) bool {
	if pattern == "" {
		return false
	}
	checkLeft := isIdentByte(pattern[0])
	checkRight := isIdentByte(pattern[len(pattern)-1])

	offset := 0
	for {
		idx := strings.Index(text[offset:], pattern)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(pattern)

		leftOK := !checkLeft || start == 0 || !isIdentByte(text[start-1])
		rightOK := !checkRight || end == len(text) || !isIdentByte(text[end])
		if leftOK && rightOK {
			return true
		}
		offset = start + 1
	}
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// ExpressionKey builds the "Object.lhs" key. An lhs that already starts with
// '.' is appended directly.
func ExpressionKey(objectName, lhs string) string {
	if strings.HasPrefix(lhs, ".") {
		return objectName + lhs
	}
	return objectName + "." + lhs
}

// KeyObjectName returns the object part of an expression key.
func KeyObjectName(key string) string {
	name, _, _ := strings.Cut(key, ".")
	return strings.TrimSpace(name)
}
