// Package grammar provides the element object model and compiler for
// small domain-specific natural-language grammars. Elements are composed
// into a DAG rooted at a GOAL symbol and compiled into a flat set of
// productions consumed by the parse package.
package grammar

import (
	"regexp"
	"strings"
)

// Kind identifies the variant of a grammar element.
type Kind int

const (
	KindLiteral Kind = iota
	KindSet
	KindRegex
	KindNull
	KindAnd
	KindOr
	KindOptional
	KindOneOrMore
	KindZeroOrMore
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "Literal"
	case KindSet:
		return "Set"
	case KindRegex:
		return "Regex"
	case KindNull:
		return "Null"
	case KindAnd:
		return "And"
	case KindOr:
		return "Or"
	case KindOptional:
		return "Optional"
	case KindOneOrMore:
		return "OneOrMore"
	case KindZeroOrMore:
		return "ZeroOrMore"
	}
	return "Unknown"
}

// ResultHandle is the view of a parse result given to result actions.
// Get and Set address the element's own value; Lookup and Put address
// sibling keys in the same result mapping. Handles are only valid for
// the duration of the action call.
type ResultHandle interface {
	Get() any
	Set(v any)
	Lookup(name string) any
	Put(name string, v any)
}

// ResultAction post-processes a completed element's value at
// result-build time.
type ResultAction func(ResultHandle)

// TokenSource is the tokenized input a terminal inspects during a scan.
// Fold and FoldSpan return the comparison form of tokens: ASCII-lowercased
// unless the parse was configured case-sensitive.
type TokenSource interface {
	Len() int
	Token(i int) string
	Span(i, j int) string
	Fold(i int) string
	FoldSpan(i, j int) string
	CaseSensitive() bool
}

// Element is a node in the grammar DAG. Compound elements hold children;
// terminal elements (Literal, Set, Regex, Null) hold match data. Elements
// are immutable once the grammar is built and may be shared between
// grammars.
type Element struct {
	kind     Kind
	name     string // user-assigned, wins over canonical
	auto     string // canonical name, assigned during compilation
	children []*Element

	pattern     string   // literal phrase or regex source
	patternFold string   // lowercased literal phrase
	members     []string // set members, definition order, whitespace-normalized
	membersFold []string
	re          *regexp.Regexp // compiled as written
	reFold      *regexp.Regexp // compiled with (?i)
	sensitive   bool
	maxWords    int

	actions []ResultAction
	asList  bool
	ignored bool
}

// Literal matches a single token (or a fixed multi-word phrase)
// case-insensitively.
func Literal(s string) *Element {
	return newPhrase(s, false)
}

// LiteralCS is the case-sensitive variant of Literal.
func LiteralCS(s string) *Element {
	return newPhrase(s, true)
}

func newPhrase(s string, sensitive bool) *Element {
	s = normalizeSpaces(s)
	return &Element{
		kind:        KindLiteral,
		pattern:     s,
		patternFold: strings.ToLower(s),
		sensitive:   sensitive,
		maxWords:    wordCount(s),
	}
}

// StringSet matches any one of a finite set of strings,
// case-insensitively. Members may be multi-word phrases, in which case
// the element consumes the corresponding consecutive tokens.
func StringSet(members ...string) *Element {
	return newSet(members, false)
}

// StringSetCS is the case-sensitive variant of StringSet.
func StringSetCS(members ...string) *Element {
	return newSet(members, true)
}

func newSet(members []string, sensitive bool) *Element {
	norm := make([]string, 0, len(members))
	fold := make([]string, 0, len(members))
	seen := make(map[string]bool, len(members))
	maxWords := 0
	for _, m := range members {
		m = normalizeSpaces(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		norm = append(norm, m)
		fold = append(fold, strings.ToLower(m))
		if w := wordCount(m); w > maxWords {
			maxWords = w
		}
	}
	return &Element{
		kind:        KindSet,
		members:     norm,
		membersFold: fold,
		sensitive:   sensitive,
		maxWords:    maxWords,
	}
}

// Regex matches a token (or a space-joined window of consecutive tokens,
// when the pattern can span whitespace) against a regular expression
// anchored to the whole window. Matching is case-insensitive. The
// pattern is compiled when the grammar is built; a bad pattern surfaces
// as a grammar error.
func Regex(pattern string) *Element {
	return &Element{
		kind:     KindRegex,
		pattern:  pattern,
		maxWords: 1 + strings.Count(pattern, " ") + strings.Count(pattern, `\s`),
	}
}

// RegexCS is the case-sensitive variant of Regex.
func RegexCS(pattern string) *Element {
	e := Regex(pattern)
	e.sensitive = true
	return e
}

// Null matches the empty string. It is shared by all grammars.
var Null = &Element{kind: KindNull, name: "NULL"}

// Named returns a shallow copy of the element carrying the given name.
// Copying allows reuse of common elements in complex grammars without
// name collision.
func (e *Element) Named(name string) *Element {
	clone := *e
	clone.name = name
	clone.actions = append([]ResultAction(nil), e.actions...)
	return &clone
}

// SetResultAction registers functions to run against this element's
// value at result-build time, replacing any previously registered ones.
// It returns the element for chaining.
func (e *Element) SetResultAction(fns ...ResultAction) *Element {
	e.actions = append([]ResultAction(nil), fns...)
	return e
}

// ReplaceResultWith is a shortcut for a result action that replaces the
// element's value with a fixed one.
func (e *Element) ReplaceResultWith(v any) *Element {
	return e.SetResultAction(func(r ResultHandle) { r.Set(v) })
}

// Ignore excludes this element (and its subtree) from parse results.
func (e *Element) Ignore() *Element {
	e.ignored = true
	return e
}

// Kind returns the element's variant.
func (e *Element) Kind() Kind { return e.kind }

// IsTerminal reports whether the element is a terminal leaf.
func (e *Element) IsTerminal() bool {
	switch e.kind {
	case KindLiteral, KindSet, KindRegex, KindNull:
		return true
	}
	return false
}

// Children returns the element's direct children (nil for terminals).
func (e *Element) Children() []*Element { return e.children }

// AsList reports whether occurrences of this element collect into a
// list in parse results (repetition elements).
func (e *Element) AsList() bool { return e.asList }

// Ignored reports whether the element is excluded from parse results.
func (e *Element) Ignored() bool { return e.ignored }

// HasActions reports whether any result action is registered.
func (e *Element) HasActions() bool { return len(e.actions) > 0 }

// RunActions invokes the registered result actions in order.
func (e *Element) RunActions(h ResultHandle) {
	for _, fn := range e.actions {
		if fn != nil {
			fn(h)
		}
	}
}

// MaxWords returns the widest token window a match of this terminal can
// cover.
func (e *Element) MaxWords() int { return e.maxWords }

// Vocabulary returns the concrete phrases a terminal can match, for
// diagnostics and completion. Regex terminals have an open vocabulary
// and return nil.
func (e *Element) Vocabulary() []string {
	switch e.kind {
	case KindLiteral:
		return []string{e.pattern}
	case KindSet:
		return append([]string(nil), e.members...)
	}
	return nil
}

// Match runs the terminal's match function against src starting at
// token i and returns the exclusive end of the longest match, or -1.
// Multi-token windows are joined with single spaces; the longest window
// wins.
func (e *Element) Match(src TokenSource, i int) int {
	n := src.Len()
	if i >= n {
		return -1
	}
	exact := e.sensitive || src.CaseSensitive()
	widest := e.maxWords
	if widest > n-i {
		widest = n - i
	}
	switch e.kind {
	case KindLiteral:
		w := e.maxWords
		if w == 0 || i+w > n {
			return -1
		}
		if exact {
			if src.Span(i, i+w) == e.pattern {
				return i + w
			}
		} else if src.FoldSpan(i, i+w) == e.patternFold {
			return i + w
		}
		return -1
	case KindSet:
		members := e.membersFold
		if exact {
			members = e.members
		}
		for w := widest; w >= 1; w-- {
			window := src.FoldSpan(i, i+w)
			if exact {
				window = src.Span(i, i+w)
			}
			for _, m := range members {
				if m == window {
					return i + w
				}
			}
		}
		return -1
	case KindRegex:
		re := e.reFold
		if exact {
			re = e.re
		}
		if re == nil {
			return -1
		}
		for w := widest; w >= 1; w-- {
			if re.MatchString(src.Span(i, i+w)) {
				return i + w
			}
		}
		return -1
	default:
		return -1
	}
}

// String returns the element's display name: the user-assigned name if
// present, else the canonical name assigned during compilation, else a
// best-effort default.
func (e *Element) String() string {
	if e.name != "" {
		return e.name
	}
	if e.auto != "" {
		return e.auto
	}
	return e.kind.String() + "(" + e.defaultName() + ")"
}

func (e *Element) defaultName() string {
	switch e.kind {
	case KindLiteral:
		return e.pattern
	case KindSet:
		return strings.Join(e.members, "|")
	case KindRegex:
		return e.pattern
	case KindNull:
		return "NULL"
	default:
		parts := make([]string, len(e.children))
		for i, c := range e.children {
			parts[i] = c.String()
		}
		return strings.Join(parts, ", ")
	}
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wordCount(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, " ")
}
