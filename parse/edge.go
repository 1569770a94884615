package parse

import (
	"fmt"
	"strings"

	"github.com/kitt-ai/parsetron/grammar"
)

// Edge is a dotted production over a token span [Start,End). Anything
// before the dot has been consumed; anything after is still expected.
// Edges are value-equal and the chart deduplicates them.
type Edge struct {
	Start int
	End   int
	Prod  *grammar.Production
	Dot   int
}

// IsPassive reports whether the edge is complete (dot at the end of the
// right-hand side).
func (e Edge) IsPassive() bool {
	return e.Dot == len(e.Prod.RHS)
}

// Expecting returns the symbol after the dot, or nil for passive edges.
func (e Edge) Expecting() *grammar.Element {
	if e.Dot == len(e.Prod.RHS) {
		return nil
	}
	return e.Prod.RHS[e.Dot]
}

// advance returns the edge with its dot moved over one symbol and its
// end extended to the given position.
func (e Edge) advance(end int) Edge {
	return Edge{Start: e.Start, End: end, Prod: e.Prod, Dot: e.Dot + 1}
}

// shadow returns the edge with its end pushed one token to the right
// and the dot unchanged, absorbing an unknown token.
func (e Edge) shadow() Edge {
	return Edge{Start: e.Start, End: e.End + 1, Prod: e.Prod, Dot: e.Dot}
}

func (e Edge) String() string {
	before := make([]string, 0, e.Dot)
	after := make([]string, 0, len(e.Prod.RHS)-e.Dot)
	for i, r := range e.Prod.RHS {
		if i < e.Dot {
			before = append(before, r.String())
		} else {
			after = append(after, r.String())
		}
	}
	return fmt.Sprintf("[%d, %d] %s -> %s * %s",
		e.Start, e.End, e.Prod.LHS,
		strings.Join(before, " "), strings.Join(after, " "))
}
