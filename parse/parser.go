package parse

import (
	"sort"

	"github.com/tliron/commonlog"

	"github.com/kitt-ai/parsetron/grammar"
)

var log = commonlog.GetLogger("parsetron.parse")

// Unlimited disables the skip cap or step budget.
const Unlimited = -1

// Prefix is an incremental parse event: a goal edge now covers the
// first End tokens. Improved marks events that extend the best prefix
// seen so far. Listeners must not mutate the chart; returning true
// stops the parse after the current rule firing.
type Prefix struct {
	End      int
	Tree     *TreeNode
	Improved bool
}

// Listener receives incremental parse events.
type Listener func(Prefix) bool

// Option configures a RobustParser.
type Option func(*RobustParser)

// WithStrategy selects the parsing strategy (default LeftCorner).
func WithStrategy(s *Strategy) Option {
	return func(p *RobustParser) { p.strategy = s }
}

// WithSkipLimit caps the number of unknown tokens a parse may skip.
// The default is Unlimited.
func WithSkipLimit(n int) Option {
	return func(p *RobustParser) { p.skipLimit = n }
}

// WithStepBudget caps the number of rule firings per parse. The default
// is Unlimited.
func WithStepBudget(n int) Option {
	return func(p *RobustParser) { p.stepBudget = n }
}

// CaseSensitive makes all matching exact instead of ASCII-lowercased.
func CaseSensitive() Option {
	return func(p *RobustParser) { p.sensitive = true }
}

// TieBreak selects how equal-size trees are ordered.
type TieBreak int

const (
	// TieBreakSkipped prefers trees with fewer skipped tokens, then
	// definition order (the default).
	TieBreakSkipped TieBreak = iota
	// TieBreakDefinitionOrder ranks equal-size trees by definition
	// order alone.
	TieBreakDefinitionOrder
)

// WithTieBreak overrides the ranking tie-break policy.
func WithTieBreak(tb TieBreak) Option {
	return func(p *RobustParser) { p.tieBreak = tb }
}

// RobustParser parses input sentences against one compiled grammar.
// Unknown tokens are skipped, multi-token phrases can match a single
// terminal, and partial results are emitted incrementally. A parser
// holds only a read reference to its grammar; each parse owns its
// tokenization, chart and agenda, so a parser is safe for sequential
// reuse and a grammar for concurrent parsers.
type RobustParser struct {
	g          *grammar.Grammar
	strategy   *Strategy
	skipLimit  int
	stepBudget int
	sensitive  bool
	tieBreak   TieBreak
}

// NewRobustParser creates a parser for the grammar.
func NewRobustParser(g *grammar.Grammar, opts ...Option) *RobustParser {
	p := &RobustParser{
		g:          g,
		strategy:   LeftCorner,
		skipLimit:  Unlimited,
		stepBudget: Unlimited,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the parser's grammar.
func (p *RobustParser) Grammar() *grammar.Grammar { return p.g }

// Candidate is one ranked parse.
type Candidate struct {
	Tree   *TreeNode
	Result *Result
}

// Parse returns the best parse of the sentence: the smallest tree, with
// ties broken by fewest skipped tokens and then definition order. The
// result is the flattened named mapping built from that tree. A failed
// parse returns a *ParseFailure; an exhausted step budget returns a
// *BudgetExceeded; a panicking result action returns the tree together
// with a *CallbackError.
func (p *RobustParser) Parse(text string) (*TreeNode, *Result, error) {
	trees, err := p.parseTrees(text, nil, 0)
	if err != nil {
		return nil, nil, err
	}
	best := trees[0]
	result, err := buildResult(best)
	if err != nil {
		return best, nil, err
	}
	return best, result, nil
}

// ParseMulti returns up to k parses ordered by ranking.
func (p *RobustParser) ParseMulti(text string, k int) ([]Candidate, error) {
	trees, err := p.parseTrees(text, nil, k)
	if err != nil {
		return nil, err
	}
	if k > 0 && len(trees) > k {
		trees = trees[:k]
	}
	out := make([]Candidate, 0, len(trees))
	for _, t := range trees {
		result, err := buildResult(t)
		if err != nil {
			return out, err
		}
		out = append(out, Candidate{Tree: t, Result: result})
	}
	return out, nil
}

// ParseIncremental parses like Parse while feeding prefix events to the
// listener. The listener is invoked synchronously from the rule loop
// whenever a goal edge covering a longer input prefix appears; it must
// not mutate the chart. Returning true stops the parse, and the best
// parse found so far is returned.
func (p *RobustParser) ParseIncremental(text string, listener Listener) (*TreeNode, *Result, error) {
	trees, err := p.parseTrees(text, listener, 0)
	if err != nil {
		return nil, nil, err
	}
	best := trees[0]
	result, err := buildResult(best)
	if err != nil {
		return best, nil, err
	}
	return best, result, nil
}

// ParseToChart exposes the raw chart and tokenization of a parse, for
// inspection and tests.
func (p *RobustParser) ParseToChart(text string) (*Chart, *Tokens, error) {
	r, err := p.newRun(text, nil)
	if err != nil {
		return nil, nil, err
	}
	r.exhaust()
	if r.budgetHit {
		return r.chart, r.tokens, &BudgetExceeded{Steps: r.steps, Tree: r.bestPartial()}
	}
	return r.chart, r.tokens, nil
}

func (p *RobustParser) parseTrees(text string, listener Listener, limit int) ([]*TreeNode, error) {
	r, err := p.newRun(text, listener)
	if err != nil {
		return nil, err
	}
	r.exhaust()
	log.Debugf("parse %q: %d edges, %d agenda entries, %d steps, %d skipped",
		text, r.chart.Len(), r.agenda.Total(), r.steps, r.skips)

	trees := r.rankedTrees(limit)
	if len(trees) == 0 && r.stop {
		if best := r.bestPartial(); best != nil {
			trees = []*TreeNode{best}
		}
	}
	if r.budgetHit && len(trees) == 0 {
		return nil, &BudgetExceeded{Steps: r.steps, Tree: r.bestPartial()}
	}
	if len(trees) == 0 {
		return nil, r.failure(text)
	}
	return trees, nil
}

func (p *RobustParser) newRun(text string, listener Listener) (*run, error) {
	tokens := Tokenize(text, p.sensitive)
	if tokens.Len() == 0 {
		return nil, &ParseFailure{Input: text}
	}
	n := tokens.Len()
	r := &run{
		p:        p,
		g:        p.g,
		tokens:   tokens,
		chart:    NewChart(n, p.g.Goal()),
		agenda:   &Agenda{},
		skipped:  make([]bool, n),
		scanOK:   make([]bool, n),
		listener: listener,
	}
	p.strategy.seed(r)
	return r, nil
}

// Suggest returns concrete next-token suggestions for an input prefix:
// the vocabulary of every terminal expected at the furthest position
// the parse reaches. An empty input suggests the terminals that can
// begin the goal. Regex terminals contribute their name in angle
// brackets since their vocabulary is open.
func (p *RobustParser) Suggest(text string) []string {
	seen := make(map[string]bool)
	var out []string
	addTerm := func(t *grammar.Element) {
		words := t.Vocabulary()
		if words == nil {
			words = []string{"<" + t.String() + ">"}
		}
		for _, w := range words {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}

	r, err := p.newRun(text, nil)
	if err != nil {
		for _, t := range p.g.LeftCornerTerminalsOf(p.g.Goal()) {
			addTerm(t)
		}
		sort.Strings(out)
		return out
	}
	r.exhaust()
	n := r.tokens.Len()
	furthest := 0
	for j := n; j >= 0; j-- {
		if len(r.chart.ActiveAt(j)) > 0 {
			furthest = j
			break
		}
	}
	for _, a := range r.chart.ActiveAt(furthest) {
		sym := a.Expecting()
		if sym == nil {
			continue
		}
		for _, t := range r.g.LeftCornerTerminalsOf(sym) {
			addTerm(t)
		}
	}
	sort.Strings(out)
	return out
}

// run is the state of a single parse invocation.
type run struct {
	p      *RobustParser
	g      *grammar.Grammar
	tokens *Tokens
	chart  *Chart
	agenda *Agenda

	steps     int
	budgetHit bool
	stop      bool

	skipped []bool // positions absorbed by shadow edges
	scanOK  []bool // positions where some terminal matched
	skips   int

	listener   Listener
	bestPrefix int
}

// add inserts an edge, records its derivation, and queues it when new.
func (r *run) add(e Edge, prev, child *Edge) bool {
	fresh := r.chart.Insert(e)
	if child != nil {
		r.chart.addBackpointers(e, prev, *child)
	}
	if !fresh {
		return false
	}
	r.agenda.Push(e)
	if r.listener != nil && e.IsPassive() && e.Prod.LHS == r.g.Goal() && e.Start == 0 {
		r.notify(e)
	}
	return true
}

func (r *run) notify(e Edge) {
	improved := e.End > r.bestPrefix
	if improved {
		r.bestPrefix = e.End
	}
	builder := &treeBuilder{chart: r.chart, tokens: r.tokens}
	trees := builder.mostCompact(e)
	var tree *TreeNode
	if len(trees) > 0 {
		tree = trees[0]
	}
	if r.listener(Prefix{End: e.End, Tree: tree, Improved: improved}) {
		r.stop = true
	}
}

// exhaust drains the agenda, seeding skip edges between rounds, until
// no rule can fire, the listener stops the parse, or the step budget
// runs out.
func (r *run) exhaust() {
	for {
		r.drain()
		if r.stop || r.budgetHit {
			return
		}
		if !r.seedSkips() {
			return
		}
	}
}

func (r *run) drain() {
	for {
		e, ok := r.agenda.Pop()
		if !ok {
			return
		}
		for _, rule := range r.p.strategy.rules {
			if r.p.stepBudget != Unlimited && r.steps >= r.p.stepBudget {
				r.budgetHit = true
				return
			}
			r.steps++
			rule.apply(r, e)
			if r.stop {
				return
			}
		}
	}
}

// seedSkips advances past unknown tokens: at every position where no
// expected terminal matched, each active edge ending there is reseeded
// with its end pushed one token right. Returns whether any shadow edge
// was seeded.
func (r *run) seedSkips() bool {
	n := r.tokens.Len()
	// Collect positions before seeding, so shadow edges created in this
	// round are scanned before their own position can be skipped.
	pending := make(map[int][]Edge)
	var positions []int
	for j := 0; j < n; j++ {
		if r.skipped[j] || r.scanOK[j] {
			continue
		}
		if actives := snapshot(r.chart.ActiveAt(j)); len(actives) > 0 {
			pending[j] = actives
			positions = append(positions, j)
		}
	}
	seeded := false
	for _, j := range positions {
		if r.p.skipLimit != Unlimited && r.skips >= r.p.skipLimit {
			break
		}
		r.skipped[j] = true
		r.skips++
		seeded = true
		for _, a := range pending[j] {
			sh := a.shadow()
			r.chart.copyBackpointers(sh, a)
			r.add(sh, nil, nil)
		}
	}
	return seeded
}

// roots returns the passive goal edges that span the input once
// trailing skipped positions are accounted for, in insertion order.
func (r *run) roots() []Edge {
	n := r.tokens.Len()
	var roots []Edge
	for _, e := range r.chart.PassiveRooted() {
		covered := true
		for j := e.End; j < n; j++ {
			if !r.skipped[j] {
				covered = false
				break
			}
		}
		if covered {
			roots = append(roots, e)
		}
	}
	return roots
}

// rankedTrees builds the most compact trees of every spanning root and
// orders them by node count, then skipped tokens, then definition
// order. limit > 0 additionally enumerates non-compact derivations per
// root up to the limit.
func (r *run) rankedTrees(limit int) []*TreeNode {
	builder := &treeBuilder{chart: r.chart, tokens: r.tokens}
	var trees []*TreeNode
	for _, root := range r.roots() {
		if limit > 0 {
			trees = append(trees, builder.all(root, limit)...)
		} else {
			trees = append(trees, builder.mostCompact(root)...)
		}
	}
	sort.SliceStable(trees, func(i, j int) bool {
		si, sj := trees[i].Size(), trees[j].Size()
		if si != sj {
			return si < sj
		}
		if r.p.tieBreak == TieBreakSkipped {
			return trees[i].Skipped() < trees[j].Skipped()
		}
		return false
	})
	return trees
}

// bestPartial returns the tree of the passive goal edge covering the
// longest prefix, preferring the smallest tree among equal spans.
func (r *run) bestPartial() *TreeNode {
	builder := &treeBuilder{chart: r.chart, tokens: r.tokens}
	var best *TreeNode
	for _, e := range r.chart.PassiveRooted() {
		for _, t := range builder.mostCompact(e) {
			if best == nil || t.End > best.End || (t.End == best.End && t.Size() < best.Size()) {
				best = t
			}
		}
	}
	return best
}

// failure summarizes why no parse exists: the furthest position any
// active edge reached and the terminals expected there.
func (r *run) failure(text string) *ParseFailure {
	n := r.tokens.Len()
	furthest := 0
	for j := n; j >= 0; j-- {
		if len(r.chart.ActiveAt(j)) > 0 {
			furthest = j
			break
		}
	}
	seen := make(map[string]bool)
	var expected []string
	for _, a := range r.chart.ActiveAt(furthest) {
		sym := a.Expecting()
		if sym == nil {
			continue
		}
		for _, t := range r.g.LeftCornerTerminalsOf(sym) {
			if name := t.String(); !seen[name] {
				seen[name] = true
				expected = append(expected, name)
			}
		}
	}
	sort.Strings(expected)
	return &ParseFailure{Input: text, Furthest: furthest, Expected: expected}
}
