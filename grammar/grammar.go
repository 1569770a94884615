package grammar

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("parsetron.grammar")

// Builder collects named elements and a GOAL and compiles them into a
// Grammar. It replaces the class-attribute convention of dynamic
// languages with explicit registration: every Define call names an
// element, and the distinguished GOAL designates the start symbol.
type Builder struct {
	name  string
	names map[*Element]string
	used  map[string]*Element
	goal  *Element
	err   error
}

// NewBuilder starts a grammar definition with the given grammar name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		names: make(map[*Element]string),
		used:  make(map[string]*Element),
	}
}

// Define names an element and returns it, so definitions read as
// assignments:
//
//	action := b.Define("action", grammar.StringSet("change", "flash"))
func (b *Builder) Define(name string, e *Element) *Element {
	if b.err != nil {
		return e
	}
	if name == "" || name == "NULL" {
		b.err = errorf("element name %q is reserved", name)
		return e
	}
	if prev, ok := b.names[e]; ok && prev != name {
		b.err = errorf("element already defined as %q, redefined as %q", prev, name)
		return e
	}
	if prev, ok := b.used[name]; ok && prev != e {
		b.err = errorf("name %q defined for two distinct elements", name)
		return e
	}
	b.names[e] = name
	b.used[name] = e
	return e
}

// Goal designates the start symbol and returns it.
func (b *Builder) Goal(e *Element) *Element {
	b.goal = e
	return e
}

// Build compiles the collected definitions into an immutable Grammar.
func (b *Builder) Build() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.goal == nil {
		return nil, errorf("%s: a GOAL must be defined", b.name)
	}
	return compile(b.name, b.goal, b.names)
}

// Grammar is the immutable compiled artifact: the flat production set
// plus the indexes the chart rules consult. Grammars are safe to share
// across concurrent parsers.
type Grammar struct {
	name  string
	goal  *Element
	prods []*Production

	terminalProd     map[*Element]*Production
	terminals        []*Element
	nonterminalProds map[*Element][]*Production
	goalProds        []*Production
	byFirstRHS       map[*Element][]*Production

	lcTerms   map[*Production][]*Production
	lcCats    map[*Production][]*Production
	lcSyms    map[*Element]map[*Element]bool
	lcTermsOf map[*Element][]*Element
}

// Name returns the grammar's name.
func (g *Grammar) Name() string { return g.name }

// Goal returns the start symbol.
func (g *Grammar) Goal() *Element { return g.goal }

// Len returns the number of productions.
func (g *Grammar) Len() int { return len(g.prods) }

// Productions returns all productions in definition order.
func (g *Grammar) Productions() []*Production { return g.prods }

// GoalProductions returns the productions whose LHS is the goal.
func (g *Grammar) GoalProductions() []*Production { return g.goalProds }

// TerminalProduction returns the identity production backing a terminal
// element, or nil.
func (g *Grammar) TerminalProduction(e *Element) *Production {
	return g.terminalProd[e]
}

// Terminals returns all terminal elements in definition order.
func (g *Grammar) Terminals() []*Element { return g.terminals }

// ProductionsFor returns the productions defining a nonterminal.
func (g *Grammar) ProductionsFor(lhs *Element) []*Production {
	return g.nonterminalProds[lhs]
}

// ProductionsStartingWith returns the productions whose first
// right-hand-side symbol is sym.
func (g *Grammar) ProductionsStartingWith(sym *Element) []*Production {
	return g.byFirstRHS[sym]
}

// LeftCornerTerminals returns the terminal productions reachable at the
// left corner of prod.
func (g *Grammar) LeftCornerTerminals(p *Production) []*Production {
	return g.lcTerms[p]
}

// LeftCornerNonterminals returns the nonterminal productions reachable
// at the left corner of prod, including prod itself.
func (g *Grammar) LeftCornerNonterminals(p *Production) []*Production {
	return g.lcCats[p]
}

// IsLeftCorner reports whether sym can appear at the left corner of a
// derivation of the nonterminal "of".
func (g *Grammar) IsLeftCorner(sym, of *Element) bool {
	if sym == of {
		return true
	}
	return g.lcSyms[of][sym]
}

// LeftCornerTerminalsOf returns the terminal elements that can begin a
// derivation of sym, in definition order. A terminal sym yields itself.
func (g *Grammar) LeftCornerTerminalsOf(sym *Element) []*Element {
	if sym.IsTerminal() {
		return []*Element{sym}
	}
	return g.lcTermsOf[sym]
}

// String renders the production set, one production per line, sorted
// for stable output.
func (g *Grammar) String() string {
	lines := make([]string, 0, len(g.prods))
	for _, p := range g.prods {
		tag := "NonTerminal  "
		if p.Terminal {
			tag = "IsaTerminal  "
		}
		lines = append(lines, tag+p.String())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func compile(name string, goal *Element, names map[*Element]string) (*Grammar, error) {
	if err := checkAcyclic(goal); err != nil {
		return nil, err
	}
	streamline(goal, names, make(map[*Element]bool))
	assignNames(goal, names, make(map[*Element]bool))
	if err := validateTerminals(goal, make(map[*Element]bool)); err != nil {
		return nil, err
	}

	acc := &prodAccumulator{seen: make(map[string]bool), ids: make(map[*Element]int)}
	acc.build(goal, make(map[*Element]bool))
	prods := eliminateNull(acc)
	prods = append(prods, newProduction(Null, []*Element{Null}))

	g := &Grammar{
		name:             name,
		goal:             goal,
		prods:            prods,
		terminalProd:     make(map[*Element]*Production),
		nonterminalProds: make(map[*Element][]*Production),
		byFirstRHS:       make(map[*Element][]*Production),
	}
	for _, p := range prods {
		if p.Terminal {
			if _, ok := g.terminalProd[p.LHS]; !ok {
				g.terminalProd[p.LHS] = p
				g.terminals = append(g.terminals, p.LHS)
			}
		} else {
			g.nonterminalProds[p.LHS] = append(g.nonterminalProds[p.LHS], p)
		}
		if p.LHS == goal {
			g.goalProds = append(g.goalProds, p)
		}
		if len(p.RHS) > 0 {
			g.byFirstRHS[p.RHS[0]] = append(g.byFirstRHS[p.RHS[0]], p)
		}
	}
	if len(g.goalProds) == 0 {
		return nil, errorf("%s: GOAL has no productions", name)
	}
	g.buildLeftCorners()

	log.Debugf("grammar %s: %d productions", name, len(prods))
	return g, nil
}

// checkAcyclic rejects user-visible cycles in the element DAG.
// Repetition is the only way to express infinite languages; it lowers
// to self-recursive productions instead of element cycles.
func checkAcyclic(root *Element) error {
	done := make(map[*Element]bool)
	onPath := make(map[*Element]bool)
	var walk func(e *Element) error
	walk = func(e *Element) error {
		if done[e] {
			return nil
		}
		if onPath[e] {
			what := e.name
			if what == "" {
				what = e.kind.String()
			}
			return errorf("cyclic element composition through %s", what)
		}
		onPath[e] = true
		for _, c := range e.children {
			if err := walk(c); err != nil {
				return err
			}
		}
		onPath[e] = false
		done[e] = true
		return nil
	}
	return walk(root)
}

// streamline flattens directly nested And-in-And and Or-in-Or children
// that carry no name and no result action, un-binarizing chains built
// by incremental composition.
func streamline(e *Element, names map[*Element]string, done map[*Element]bool) {
	if done[e] {
		return
	}
	done[e] = true
	for _, c := range e.children {
		streamline(c, names, done)
	}
	if e.kind != KindAnd && e.kind != KindOr {
		return
	}
	flat := make([]*Element, 0, len(e.children))
	for _, c := range e.children {
		_, named := names[c]
		if c.kind == e.kind && !named && c.name == "" && len(c.actions) == 0 {
			flat = append(flat, c.children...)
		} else {
			flat = append(flat, c)
		}
	}
	e.children = flat
}

// assignNames gives every reachable element a stable display name:
// the builder-registered name where available, else a canonical form
// derived from the element's kind and children. Children are named
// first so a parent can borrow their names.
func assignNames(e *Element, names map[*Element]string, done map[*Element]bool) {
	if done[e] {
		return
	}
	done[e] = true
	if n, ok := names[e]; ok {
		e.name = n
	}
	for _, c := range e.children {
		assignNames(c, names, done)
	}
	if e.name == "" && e.auto == "" {
		e.auto = e.kind.String() + "(" + e.defaultName() + ")"
	}
}

func validateTerminals(e *Element, done map[*Element]bool) error {
	if done[e] {
		return nil
	}
	done[e] = true
	switch e.kind {
	case KindLiteral:
		if e.pattern == "" {
			return errorf("empty literal")
		}
	case KindSet:
		if len(e.members) == 0 {
			return errorf("empty string set")
		}
	case KindRegex:
		if e.pattern == "" {
			return errorf("empty regex pattern")
		}
		if e.re == nil {
			re, err := regexp.Compile("^(?:" + e.pattern + ")$")
			if err != nil {
				return errorf("regex %q: %v", e.pattern, err)
			}
			fold, err := regexp.Compile("(?i)^(?:" + e.pattern + ")$")
			if err != nil {
				return errorf("regex %q: %v", e.pattern, err)
			}
			e.re, e.reFold = re, fold
		}
	}
	for _, c := range e.children {
		if err := validateTerminals(c, done); err != nil {
			return err
		}
	}
	return nil
}

// prodAccumulator collects productions in definition order with
// duplicate suppression. Element ids are assigned in walk order and
// key the dedup set.
type prodAccumulator struct {
	prods []*Production
	seen  map[string]bool
	ids   map[*Element]int
}

func (a *prodAccumulator) id(e *Element) int {
	if id, ok := a.ids[e]; ok {
		return id
	}
	id := len(a.ids)
	a.ids[e] = id
	return id
}

func (a *prodAccumulator) key(p *Production) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d>", a.id(p.LHS))
	for _, r := range p.RHS {
		fmt.Fprintf(&sb, " %d", a.id(r))
	}
	return sb.String()
}

func (a *prodAccumulator) add(p *Production) {
	k := a.key(p)
	if a.seen[k] {
		return
	}
	a.seen[k] = true
	a.prods = append(a.prods, p)
}

// build walks the element DAG depth-first and lowers each compound
// element to its productions; terminal leaves get identity productions.
func (a *prodAccumulator) build(e *Element, done map[*Element]bool) {
	if done[e] {
		return
	}
	done[e] = true
	for _, c := range e.children {
		a.build(c, done)
	}
	switch e.kind {
	case KindAnd:
		a.add(newProduction(e, e.children))
	case KindOr:
		for _, c := range e.children {
			a.add(newProduction(e, []*Element{c}))
		}
	case KindOptional:
		a.add(newProduction(e, []*Element{Null}))
		a.add(newProduction(e, []*Element{e.children[0]}))
	case KindOneOrMore:
		a.add(newProduction(e, []*Element{e.children[0]}))
		a.add(newProduction(e, []*Element{e.children[0], e}))
	case KindZeroOrMore:
		a.add(newProduction(e, []*Element{Null}))
		a.add(newProduction(e, []*Element{e.children[0]}))
		a.add(newProduction(e, []*Element{e.children[0], e}))
	default:
		a.add(newProduction(e, []*Element{e}))
	}
}

// eliminateNull removes Null productions and identity productions, then
// compensates by adding, for every production whose RHS mentions
// nullable elements, the variants with those elements left out. Null
// elements are highly ambiguous during parsing; expanding them up front
// trades grammar size for chart size.
func eliminateNull(acc *prodAccumulator) []*Production {
	nullable := make(map[*Element]bool)
	for _, p := range acc.prods {
		allNull := len(p.RHS) > 0
		for _, r := range p.RHS {
			if r.kind != KindNull {
				allNull = false
				break
			}
		}
		if allNull {
			nullable[p.LHS] = true
		}
	}

	kept := acc.prods[:0:0]
	for _, p := range acc.prods {
		if nullable[p.LHS] && len(p.RHS) == 1 && p.RHS[0].kind == KindNull {
			continue
		}
		if !p.Terminal && len(p.RHS) == 1 && p.RHS[0] == p.LHS {
			continue
		}
		kept = append(kept, p)
	}

	out := make([]*Production, 0, len(kept))
	seen := make(map[string]bool)
	keep := func(p *Production) {
		k := acc.key(p)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, p)
	}
	for _, p := range kept {
		keep(p)
		var nullIdx []int
		for i, r := range p.RHS {
			if nullable[r] {
				nullIdx = append(nullIdx, i)
			}
		}
		if len(nullIdx) == 0 {
			continue
		}
		// every non-empty subset of nullable positions can be absent
		for mask := 1; mask < 1<<len(nullIdx); mask++ {
			drop := make(map[int]bool, len(nullIdx))
			for bit, idx := range nullIdx {
				if mask&(1<<bit) != 0 {
					drop[idx] = true
				}
			}
			rhs := make([]*Element, 0, len(p.RHS)-len(drop))
			for i, r := range p.RHS {
				if !drop[i] {
					rhs = append(rhs, r)
				}
			}
			if len(rhs) == 0 {
				continue
			}
			keep(newProduction(p.LHS, rhs))
		}
	}
	return out
}

// buildLeftCorners precomputes, per production, the terminal and
// nonterminal productions reachable at its left corner, and per
// nonterminal the closed set of left-corner symbols.
func (g *Grammar) buildLeftCorners() {
	g.lcTerms = make(map[*Production][]*Production)
	g.lcCats = make(map[*Production][]*Production)

	for _, p := range g.prods {
		termSet := make(map[*Production]bool)
		catSet := map[*Production]bool{p: true}
		g.lcCats[p] = []*Production{p}
		g.walkLeftCorner(p, p, termSet, catSet, make(map[*Production]bool))
	}

	g.lcSyms = make(map[*Element]map[*Element]bool)
	for _, p := range g.prods {
		if p.Terminal || len(p.RHS) == 0 {
			continue
		}
		set := g.lcSyms[p.LHS]
		if set == nil {
			set = make(map[*Element]bool)
			g.lcSyms[p.LHS] = set
		}
		set[p.RHS[0]] = true
	}
	for changed := true; changed; {
		changed = false
		for _, set := range g.lcSyms {
			for sym := range set {
				for inner := range g.lcSyms[sym] {
					if !set[inner] {
						set[inner] = true
						changed = true
					}
				}
			}
		}
	}

	g.lcTermsOf = make(map[*Element][]*Element)
	for _, p := range g.prods {
		if p.Terminal {
			continue
		}
		if _, done := g.lcTermsOf[p.LHS]; done {
			continue
		}
		g.lcTermsOf[p.LHS] = g.collectLeftCornerTerminals(p.LHS)
	}
}

func (g *Grammar) collectLeftCornerTerminals(sym *Element) []*Element {
	var out []*Element
	seen := make(map[*Element]bool)
	visited := make(map[*Element]bool)
	var walk func(n *Element)
	walk = func(n *Element) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, p := range g.nonterminalProds[n] {
			if len(p.RHS) == 0 {
				continue
			}
			first := p.RHS[0]
			if first.IsTerminal() {
				if !seen[first] {
					seen[first] = true
					out = append(out, first)
				}
			} else {
				walk(first)
			}
		}
	}
	walk(sym)
	return out
}

func (g *Grammar) walkLeftCorner(root, cur *Production, termSet, catSet map[*Production]bool, visited map[*Production]bool) {
	if visited[cur] {
		return
	}
	visited[cur] = true
	if len(cur.RHS) == 0 {
		return
	}
	first := cur.RHS[0]
	if first.IsTerminal() {
		tp := g.terminalProd[first]
		if tp != nil && !termSet[tp] {
			termSet[tp] = true
			g.lcTerms[root] = append(g.lcTerms[root], tp)
		}
		return
	}
	for _, cc := range g.nonterminalProds[first] {
		if !catSet[cc] {
			catSet[cc] = true
			g.lcCats[root] = append(g.lcCats[root], cc)
		}
		g.walkLeftCorner(root, cc, termSet, catSet, visited)
	}
}
