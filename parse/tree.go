package parse

import (
	"strings"

	"github.com/kitt-ai/parsetron/grammar"
)

// TreeNode is one node of a parse tree. Leaves carry the matched text
// of a terminal over their token span; interior nodes carry the LHS
// element and ordered children. The chains produced by self-recursive
// repetition productions are flattened into n-ary nodes, so a
// OneOrMore node lists its occurrences directly.
type TreeNode struct {
	Element  *grammar.Element
	Prod     *grammar.Production
	Children []*TreeNode
	Start    int
	End      int
	text     string
}

func newTreeNode(e Edge, children []*TreeNode, tokens *Tokens) *TreeNode {
	if e.Prod.Recursive {
		flat := make([]*TreeNode, 0, len(children))
		for _, c := range children {
			if c.Prod != nil && c.Prod.LHS == e.Prod.LHS {
				flat = append(flat, c.Children...)
			} else {
				flat = append(flat, c)
			}
		}
		children = flat
	}
	t := &TreeNode{
		Element:  e.Prod.LHS,
		Prod:     e.Prod,
		Children: children,
		Start:    e.Start,
		End:      e.End,
	}
	if len(children) == 0 {
		t.text = tokens.Span(e.Start, e.End)
	} else {
		parts := make([]string, 0, len(children))
		for _, c := range children {
			if c.text != "" {
				parts = append(parts, c.text)
			}
		}
		t.text = strings.Join(parts, " ")
	}
	return t
}

// IsLeaf reports whether the node is a terminal leaf.
func (t *TreeNode) IsLeaf() bool { return len(t.Children) == 0 }

// Text returns the matched text under this node, skipped tokens
// excluded, original spacing collapsed.
func (t *TreeNode) Text() string { return t.text }

// Size returns the total number of nodes in the tree.
func (t *TreeNode) Size() int {
	size := 1
	for _, c := range t.Children {
		size += c.Size()
	}
	return size
}

// Skipped returns how many tokens inside the node's span are not
// covered by any leaf.
func (t *TreeNode) Skipped() int {
	return (t.End - t.Start) - t.covered()
}

func (t *TreeNode) covered() int {
	if t.IsLeaf() {
		return t.End - t.Start
	}
	sum := 0
	for _, c := range t.Children {
		sum += c.covered()
	}
	return sum
}

// String renders the tree in indented s-expression form.
func (t *TreeNode) String() string {
	var sb strings.Builder
	t.render(&sb, 0)
	return sb.String()
}

func (t *TreeNode) render(sb *strings.Builder, indent int) {
	pad := strings.Repeat(" ", indent)
	sb.WriteString(pad)
	sb.WriteByte('(')
	sb.WriteString(t.Element.String())
	if t.IsLeaf() {
		sb.WriteString(" \"")
		sb.WriteString(t.text)
		sb.WriteString("\")\n")
		return
	}
	sb.WriteByte('\n')
	for _, c := range t.Children {
		c.render(sb, indent+2)
	}
	sb.WriteString(pad)
	sb.WriteString(")\n")
}

// Dict returns a nested map representation suitable for JSON encoding.
func (t *TreeNode) Dict() map[string]any {
	name := t.Element.String()
	if t.IsLeaf() {
		return map[string]any{name: t.text}
	}
	children := make([]any, len(t.Children))
	for i, c := range t.Children {
		children[i] = c.Dict()
	}
	return map[string]any{name: children}
}

// treeBuilder reconstructs trees from a chart's backpointers.
type treeBuilder struct {
	chart   *Chart
	tokens  *Tokens
	compact map[Edge][]*TreeNode
}

// mostCompact returns the smallest trees derivable from an edge,
// pruning spurious ambiguity: only the derivation tuples with the
// fewest children are considered, and among those the one whose
// subtrees are smallest.
func (b *treeBuilder) mostCompact(e Edge) []*TreeNode {
	if b.compact == nil {
		b.compact = make(map[Edge][]*TreeNode)
	}
	if trees, ok := b.compact[e]; ok {
		return trees
	}
	tuples := b.chart.Derivations(e)
	if len(tuples) == 0 {
		trees := []*TreeNode{newTreeNode(e, nil, b.tokens)}
		b.compact[e] = trees
		return trees
	}

	minLen := len(tuples[0])
	for _, t := range tuples {
		if len(t) < minLen {
			minLen = len(t)
		}
	}

	var bestChildren [][]*TreeNode
	bestSum := -1
	for _, tuple := range tuples {
		if len(tuple) != minLen {
			continue
		}
		childTrees := make([][]*TreeNode, len(tuple))
		sum := 0
		for i, child := range tuple {
			childTrees[i] = b.mostCompact(child)
			sum += childTrees[i][0].Size()
		}
		if bestSum == -1 || sum < bestSum {
			bestSum = sum
			bestChildren = childTrees
		}
	}

	var trees []*TreeNode
	for _, combo := range crossProduct(bestChildren, 0) {
		trees = append(trees, newTreeNode(e, combo, b.tokens))
	}
	b.compact[e] = trees
	return trees
}

// all enumerates every derivation of an edge, up to limit trees.
func (b *treeBuilder) all(e Edge, limit int) []*TreeNode {
	tuples := b.chart.Derivations(e)
	if len(tuples) == 0 {
		return []*TreeNode{newTreeNode(e, nil, b.tokens)}
	}
	var trees []*TreeNode
	for _, tuple := range tuples {
		childTrees := make([][]*TreeNode, len(tuple))
		for i, child := range tuple {
			childTrees[i] = b.all(child, limit)
		}
		for _, combo := range crossProduct(childTrees, limit) {
			trees = append(trees, newTreeNode(e, combo, b.tokens))
			if limit > 0 && len(trees) >= limit {
				return trees
			}
		}
	}
	return trees
}

// crossProduct combines one choice from each alternative list. limit
// caps the number of combinations; 0 means no cap.
func crossProduct(lists [][]*TreeNode, limit int) [][]*TreeNode {
	combos := [][]*TreeNode{nil}
	for _, alternatives := range lists {
		next := make([][]*TreeNode, 0, len(combos)*len(alternatives))
		for _, combo := range combos {
			for _, alt := range alternatives {
				extended := make([]*TreeNode, len(combo)+1)
				copy(extended, combo)
				extended[len(combo)] = alt
				next = append(next, extended)
				if limit > 0 && len(next) >= limit {
					break
				}
			}
			if limit > 0 && len(next) >= limit {
				break
			}
		}
		combos = next
	}
	return combos
}
