package parse

import "github.com/kitt-ai/parsetron/grammar"

// A chartRule is one inference step applied to an edge popped from the
// agenda. Rules only read the chart and propose new edges through
// run.add, which deduplicates and queues them.
type chartRule interface {
	apply(r *run, e Edge)
}

// topDownPredictRule expands a nonterminal expectation: for an active
// edge expecting N at position j, every production of N is predicted at
// [j,j).
type topDownPredictRule struct{}

func (topDownPredictRule) apply(r *run, e Edge) {
	sym := e.Expecting()
	if sym == nil || sym.IsTerminal() {
		return
	}
	for _, p := range r.g.ProductionsFor(sym) {
		r.add(Edge{Start: e.End, End: e.End, Prod: p, Dot: 0}, nil, nil)
	}
}

// scanRule matches terminals against the tokens at an active edge's end
// position. In left-corner mode the terminals tried are the left-corner
// terminals of the expected symbol, so scanning is driven without
// intermediate predictions. A successful match inserts the terminal's
// passive edge over the matched span; the longest multi-token match
// wins.
type scanRule struct {
	leftCorner bool
}

func (s scanRule) apply(r *run, e Edge) {
	sym := e.Expecting()
	if sym == nil || e.End >= r.tokens.Len() {
		return
	}
	var terms []*grammar.Element
	switch {
	case sym.IsTerminal():
		terms = []*grammar.Element{sym}
	case s.leftCorner:
		terms = r.g.LeftCornerTerminalsOf(sym)
	default:
		return
	}
	for _, t := range terms {
		k := t.Match(r.tokens, e.End)
		if k <= e.End {
			continue
		}
		r.scanOK[e.End] = true
		tp := r.g.TerminalProduction(t)
		r.add(Edge{Start: e.End, End: k, Prod: tp, Dot: len(tp.RHS)}, nil, nil)
	}
}

// leftCornerPredictRule drives prediction bottom-up from completions:
// when N completes over [i,j), every production M -> N delta advances
// directly to M -> N . delta over [i,j) -- provided some active edge
// ending at i expects a symbol that M can begin. The guard keeps
// prediction goal-directed and prevents runaway bottom-up chains.
type leftCornerPredictRule struct{}

func (leftCornerPredictRule) apply(r *run, e Edge) {
	if !e.IsPassive() {
		return
	}
	lhs := e.Prod.LHS
	for _, p := range r.g.ProductionsStartingWith(lhs) {
		if p.Terminal {
			continue
		}
		if !r.activeLicenses(e.Start, p.LHS) {
			continue
		}
		r.add(Edge{Start: e.Start, End: e.End, Prod: p, Dot: 1}, nil, &e)
	}
}

func (r *run) activeLicenses(i int, m *grammar.Element) bool {
	for _, a := range r.chart.ActiveAt(i) {
		if x := a.Expecting(); x != nil && r.g.IsLeftCorner(m, x) {
			return true
		}
	}
	return false
}

// bottomUpPredictRule predicts from completions without a top-down
// guard: when N completes at [i,j), every production M -> N delta is
// seeded as M -> . N delta at [i,i).
type bottomUpPredictRule struct{}

func (bottomUpPredictRule) apply(r *run, e Edge) {
	if !e.IsPassive() {
		return
	}
	for _, p := range r.g.ProductionsStartingWith(e.Prod.LHS) {
		if p.Terminal {
			continue
		}
		r.add(Edge{Start: e.Start, End: e.Start, Prod: p, Dot: 0}, nil, nil)
	}
}

// completeRule is the fundamental rule, applied symmetrically: a passive
// edge advances the active edges ending where it starts, and an active
// edge advances over the passive edges starting where it ends.
type completeRule struct{}

func (completeRule) apply(r *run, e Edge) {
	if e.IsPassive() {
		for _, a := range snapshot(r.chart.ActiveEndingAt(e.Start, e.Prod.LHS)) {
			merged := a.advance(e.End)
			if merged == e {
				continue
			}
			prev := a
			r.add(merged, &prev, &e)
		}
		return
	}
	sym := e.Expecting()
	for _, p := range snapshot(r.chart.PassiveFrom(e.End, sym)) {
		merged := e.advance(p.End)
		if merged == e {
			continue
		}
		prev := e
		child := p
		r.add(merged, &prev, &child)
	}
}

// snapshot copies an index bucket before iteration; rule firing appends
// to the underlying slices.
func snapshot(edges []Edge) []Edge {
	if len(edges) == 0 {
		return nil
	}
	return append([]Edge(nil), edges...)
}
