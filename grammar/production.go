package grammar

import "strings"

// Production is a single rewrite rule LHS -> RHS produced by grammar
// compilation. Terminal productions are the identity rules backing
// terminal elements; their RHS is the terminal itself. Recursive
// productions come from repetition elements and mention their LHS on
// the right-hand side.
type Production struct {
	LHS       *Element
	RHS       []*Element
	Terminal  bool
	Recursive bool
}

func newProduction(lhs *Element, rhs []*Element) *Production {
	p := &Production{
		LHS:      lhs,
		RHS:      rhs,
		Terminal: lhs.IsTerminal(),
	}
	for _, r := range rhs {
		if r == lhs {
			p.Recursive = true
			break
		}
	}
	return p
}

// Len returns the number of right-hand-side symbols.
func (p *Production) Len() int { return len(p.RHS) }

func (p *Production) String() string {
	parts := make([]string, len(p.RHS))
	for i, r := range p.RHS {
		parts[i] = r.String()
	}
	return p.LHS.String() + " -> [" + strings.Join(parts, ", ") + "]"
}
