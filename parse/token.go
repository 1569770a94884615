// Package parse implements the robust, incremental chart-parsing engine
// over compiled grammars: tokenization, the edge algebra and chart, the
// predict/scan/complete rules and parsing strategies, and the conversion
// of completed edges into parse trees and named results.
package parse

import "strings"

// Tokens is the tokenization of one input sentence. It provides random
// access to tokens and to the joined substring of any span, which
// multi-token terminal scans match against. Splitting is on ASCII
// whitespace with consecutive runs collapsed.
type Tokens struct {
	raw       []string
	fold      []string
	sensitive bool
}

// Tokenize splits text into tokens. When sensitive is false (the
// default matching mode), Fold returns ASCII-lowercased forms for
// comparison.
func Tokenize(text string, sensitive bool) *Tokens {
	raw := strings.Fields(text)
	t := &Tokens{raw: raw, sensitive: sensitive}
	if sensitive {
		t.fold = raw
	} else {
		t.fold = make([]string, len(raw))
		for i, w := range raw {
			t.fold[i] = strings.ToLower(w)
		}
	}
	return t
}

// Len returns the token count.
func (t *Tokens) Len() int { return len(t.raw) }

// Token returns token i as written.
func (t *Tokens) Token(i int) string { return t.raw[i] }

// Span returns tokens [i,j) joined with single spaces.
func (t *Tokens) Span(i, j int) string {
	return strings.Join(t.raw[i:j], " ")
}

// Fold returns the comparison form of token i.
func (t *Tokens) Fold(i int) string { return t.fold[i] }

// FoldSpan returns the comparison form of tokens [i,j) joined with
// single spaces.
func (t *Tokens) FoldSpan(i, j int) string {
	return strings.Join(t.fold[i:j], " ")
}

// CaseSensitive reports whether this tokenization compares tokens
// exactly.
func (t *Tokens) CaseSensitive() bool { return t.sensitive }
