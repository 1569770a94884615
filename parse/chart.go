package parse

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kitt-ai/parsetron/grammar"
)

type symAt struct {
	pos int
	sym *grammar.Element
}

// Chart is the set of edges built during one parse, indexed two ways:
// active edges by (end position, expected symbol) for the completer,
// and passive edges by (start position, LHS) for prediction and the
// symmetric half of the completer. Insertion is idempotent; duplicates
// are dropped and generate no further work.
//
// For each passive edge the chart records backpointers: the tuples of
// child edges the fundamental rule combined to complete it. An edge may
// accumulate several tuples (ambiguity).
type Chart struct {
	n   int
	ids map[Edge]int

	activeByEndNext   map[symAt][]Edge
	passiveByStartLHS map[symAt][]Edge
	activeByEnd       map[int][]Edge
	passiveGoal       []Edge // lhs = GOAL, start = 0, insertion order

	backs    map[Edge][][]Edge
	backKeys map[Edge]map[string]bool

	goal *grammar.Element
}

// NewChart creates a chart for an n-token sentence.
func NewChart(n int, goal *grammar.Element) *Chart {
	return &Chart{
		n:                 n,
		ids:               make(map[Edge]int),
		activeByEndNext:   make(map[symAt][]Edge),
		passiveByStartLHS: make(map[symAt][]Edge),
		activeByEnd:       make(map[int][]Edge),
		backs:             make(map[Edge][][]Edge),
		backKeys:          make(map[Edge]map[string]bool),
		goal:              goal,
	}
}

// Len returns the number of distinct edges.
func (c *Chart) Len() int { return len(c.ids) }

// Contains reports whether the edge is present.
func (c *Chart) Contains(e Edge) bool {
	_, ok := c.ids[e]
	return ok
}

// Insert adds an edge and returns true iff it was not already present.
func (c *Chart) Insert(e Edge) bool {
	if _, ok := c.ids[e]; ok {
		return false
	}
	c.ids[e] = len(c.ids)
	if e.IsPassive() {
		key := symAt{e.Start, e.Prod.LHS}
		c.passiveByStartLHS[key] = append(c.passiveByStartLHS[key], e)
		if e.Prod.LHS == c.goal && e.Start == 0 {
			c.passiveGoal = append(c.passiveGoal, e)
		}
	} else {
		key := symAt{e.End, e.Expecting()}
		c.activeByEndNext[key] = append(c.activeByEndNext[key], e)
		c.activeByEnd[e.End] = append(c.activeByEnd[e.End], e)
	}
	return true
}

// ActiveEndingAt returns the active edges ending at j that expect sym.
func (c *Chart) ActiveEndingAt(j int, sym *grammar.Element) []Edge {
	return c.activeByEndNext[symAt{j, sym}]
}

// PassiveFrom returns the passive edges with the given LHS starting at i.
func (c *Chart) PassiveFrom(i int, lhs *grammar.Element) []Edge {
	return c.passiveByStartLHS[symAt{i, lhs}]
}

// ActiveAt returns all active edges ending at j.
func (c *Chart) ActiveAt(j int) []Edge {
	return c.activeByEnd[j]
}

// PassiveRooted returns the passive GOAL edges starting at 0, in
// insertion order.
func (c *Chart) PassiveRooted() []Edge {
	return c.passiveGoal
}

// addBackpointers records that edge was formed by advancing prev over
// child. Tuples of prev are extended with child; an edge formed without
// a predecessor starts a fresh single-child tuple. Tuples deduplicate.
func (c *Chart) addBackpointers(edge Edge, prev *Edge, child Edge) {
	if edge == child {
		return
	}
	if prev != nil {
		if prevTuples, ok := c.backs[*prev]; ok {
			for _, t := range prevTuples {
				tuple := make([]Edge, len(t)+1)
				copy(tuple, t)
				tuple[len(t)] = child
				c.addTuple(edge, tuple)
			}
			return
		}
	}
	c.addTuple(edge, []Edge{child})
}

func (c *Chart) addTuple(edge Edge, tuple []Edge) {
	var sb strings.Builder
	for _, e := range tuple {
		sb.WriteString(strconv.Itoa(c.ids[e]))
		sb.WriteByte(',')
	}
	key := sb.String()
	keys := c.backKeys[edge]
	if keys == nil {
		keys = make(map[string]bool)
		c.backKeys[edge] = keys
	}
	if keys[key] {
		return
	}
	keys[key] = true
	c.backs[edge] = append(c.backs[edge], tuple)
}

// copyBackpointers carries src's derivation tuples over to dst. Shadow
// edges absorb an unknown token without consuming a symbol, so they
// inherit the children collected so far.
func (c *Chart) copyBackpointers(dst, src Edge) {
	for _, t := range c.backs[src] {
		c.addTuple(dst, t)
	}
}

// Derivations returns the recorded child-edge tuples of an edge. A
// scanned terminal edge has none.
func (c *Chart) Derivations(e Edge) [][]Edge {
	return c.backs[e]
}

// String renders all edges sorted, for debugging and test diffs.
func (c *Chart) String() string {
	lines := make([]string, 0, len(c.ids))
	for e := range c.ids {
		lines = append(lines, e.String())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
