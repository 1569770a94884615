package parse

import (
	"encoding/json"

	"github.com/kitt-ai/parsetron/grammar"
)

// Result is the flattened, named mapping built from a parse tree.
// Values are matched strings, values produced by result actions, nested
// *Result mappings, or []any lists of these when repetition or repeated
// names contribute. Descendant bindings are promoted to an ancestor's
// level whenever no name collision occurs, so results stay shallow.
//
// Result implements grammar.ResultHandle; during a result action the
// handle addresses the element's own mapping.
type Result struct {
	name   string
	asFlat bool
	items  map[string]any
	order  []string
}

func newResult(name string, lexicon any, asFlat bool) *Result {
	r := &Result{
		name:   name,
		asFlat: asFlat,
		items:  make(map[string]any),
	}
	if asFlat {
		r.items[name] = lexicon
	} else {
		r.items[name] = []any{lexicon}
	}
	r.order = append(r.order, name)
	return r
}

// Name returns the name of the element this result belongs to.
func (r *Result) Name() string { return r.name }

// Names returns all keys in insertion order.
func (r *Result) Names() []string { return r.order }

// Has reports whether a key is present.
func (r *Result) Has(name string) bool {
	_, ok := r.items[name]
	return ok
}

// Get returns the result's main value (the value under its own name).
func (r *Result) Get() any { return r.items[r.name] }

// Set replaces the result's main value. Result actions use this to
// substitute computed values for matched text.
func (r *Result) Set(v any) { r.Put(r.name, v) }

// Lookup returns the value under a key, or nil.
func (r *Result) Lookup(name string) any { return r.items[name] }

// Put sets the value under a key.
func (r *Result) Put(name string, v any) {
	if _, ok := r.items[name]; !ok {
		r.order = append(r.order, name)
	}
	r.items[name] = v
}

// Sub returns the nested result under a key, or nil if the value is not
// a nested result.
func (r *Result) Sub(name string) *Result {
	sub, _ := r.items[name].(*Result)
	return sub
}

// List returns the list under a key. A single value is returned as a
// one-element list; a missing key yields nil.
func (r *Result) List(name string) []any {
	v, ok := r.items[name]
	if !ok {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// addItem inserts k=v, turning repeated keys into lists.
func (r *Result) addItem(k string, v any) {
	existing, ok := r.items[k]
	if !ok {
		if r.asFlat {
			r.Put(k, v)
		} else {
			r.Put(k, []any{v})
		}
		return
	}
	if list, isList := existing.([]any); isList {
		r.items[k] = append(list, v)
		return
	}
	r.items[k] = []any{existing, v}
}

// addResult merges another result in: flattened, its bindings are
// promoted to this level; otherwise it nests under its own name.
func (r *Result) addResult(other *Result, asFlat bool) {
	if asFlat {
		for _, k := range other.order {
			r.addItem(k, other.items[k])
		}
		return
	}
	r.addItem(other.name, other)
}

// MarshalJSON renders the mapping; nested results render as their
// mappings.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.items)
}

func (r *Result) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "<unprintable result>"
	}
	return string(data)
}

var _ grammar.ResultHandle = (*Result)(nil)

// buildResult converts a tree into its result mapping, bottom-up:
//
//   - a node whose element is ignored, or which matched no text,
//     contributes nothing;
//   - a child's bindings are promoted into the parent when the child is
//     a leaf, or when the parent is not a list collector and none of the
//     child's names collide with a sibling's;
//   - repetition nodes collect one nested mapping per occurrence;
//   - after the children are merged, the node's own value becomes the
//     list of its children's values (or the single value), and its
//     result actions run. Actions therefore see children already
//     processed, in deterministic post-order.
func buildResult(t *TreeNode) (*Result, error) {
	lhs := t.Element
	if lhs.Ignored() {
		return nil, nil
	}
	if t.Text() == "" {
		return nil, nil
	}
	parentFlat := !lhs.AsList()

	var children []*TreeNode
	var childResults []*Result
	for _, c := range t.Children {
		sub, err := buildResult(c)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			children = append(children, c)
			childResults = append(childResults, sub)
		}
	}

	result := newResult(lhs.String(), t.Text(), parentFlat)

	if len(children) > 0 {
		counts := make(map[string]int)
		for _, cr := range childResults {
			for _, name := range cr.Names() {
				counts[name]++
			}
		}
		for i, cr := range childResults {
			asFlat := parentFlat
			if asFlat {
				for _, name := range cr.Names() {
					if counts[name] != 1 {
						asFlat = false
						break
					}
				}
			}
			result.addResult(cr, children[i].IsLeaf() || asFlat)
		}
		values := make([]any, len(childResults))
		for i, cr := range childResults {
			values[i] = cr.Get()
		}
		if len(values) == 1 && parentFlat {
			result.Set(values[0])
		} else {
			result.Set(values)
		}
	}

	if err := runActions(lhs, result); err != nil {
		return nil, err
	}
	return result, nil
}

func runActions(el *grammar.Element, r *Result) (err error) {
	if !el.HasActions() {
		return nil
	}
	defer func() {
		if cause := recover(); cause != nil {
			err = &CallbackError{Element: el.String(), Cause: cause}
		}
	}()
	el.RunActions(r)
	return nil
}
