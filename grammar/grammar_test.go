package grammar

import (
	"strings"
	"testing"
)

func buildLight(t *testing.T) *Grammar {
	t.Helper()
	b := NewBuilder("LightGrammar")
	action := b.Define("action", StringSet("change", "flash", "set", "blink"))
	light := b.Define("light", StringSet("top", "middle", "bottom"))
	color := b.Define("color", Regex("red|yellow|blue|orange|purple"))
	times := b.Define("times", Or(
		StringSet("once", "twice", "three times"),
		Regex(`\d+ times`),
	))
	oneParse := b.Define("one_parse", And(action, light, Optional(times), color))
	b.Goal(OneOrMore(oneParse))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuild_MissingGoal(t *testing.T) {
	b := NewBuilder("NoGoal")
	b.Define("x", Literal("x"))
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for missing GOAL")
	}
}

func TestBuild_CyclicComposition(t *testing.T) {
	b := NewBuilder("Cyclic")
	inner := And(Literal("a"))
	outer := And(inner)
	inner.children = append(inner.children, outer)
	b.Goal(outer)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for cyclic composition")
	}
}

func TestBuild_BadRegex(t *testing.T) {
	b := NewBuilder("BadRegex")
	b.Goal(Regex("("))
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for bad regex")
	}
}

func TestBuild_EmptyTerminals(t *testing.T) {
	b := NewBuilder("EmptyLit")
	b.Goal(Literal(""))
	if _, err := b.Build(); err == nil {
		t.Error("expected error for empty literal")
	}

	b = NewBuilder("EmptySet")
	b.Goal(StringSet())
	if _, err := b.Build(); err == nil {
		t.Error("expected error for empty set")
	}
}

func TestBuild_DuplicateNames(t *testing.T) {
	b := NewBuilder("Dup")
	b.Define("x", Literal("a"))
	b.Define("x", Literal("b"))
	b.Goal(Literal("a"))
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestCompile_NamesAssigned(t *testing.T) {
	g := buildLight(t)
	if g.Name() != "LightGrammar" {
		t.Errorf("Name = %q", g.Name())
	}
	if got := g.Goal().String(); got != "OneOrMore(one_parse)" {
		t.Errorf("goal name = %q", got)
	}
	dump := g.String()
	for _, name := range []string{"action", "light", "color", "times", "one_parse"} {
		if !strings.Contains(dump, name) {
			t.Errorf("grammar dump missing %q:\n%s", name, dump)
		}
	}
}

func TestCompile_NullEliminated(t *testing.T) {
	g := buildLight(t)
	for _, p := range g.Productions() {
		if p.LHS == Null {
			continue
		}
		for _, r := range p.RHS {
			if r.Kind() == KindNull {
				t.Errorf("production still mentions NULL: %s", p)
			}
		}
	}

	// Optional(times) must be compensated by a variant without it.
	var withTimes, withoutTimes bool
	for _, p := range g.Productions() {
		if p.LHS.String() != "one_parse" {
			continue
		}
		switch len(p.RHS) {
		case 4:
			withTimes = true
		case 3:
			withoutTimes = true
		}
	}
	if !withTimes || !withoutTimes {
		t.Errorf("one_parse variants missing: withTimes=%v withoutTimes=%v", withTimes, withoutTimes)
	}
}

func TestCompile_RecursiveRepetition(t *testing.T) {
	g := buildLight(t)
	prods := g.GoalProductions()
	if len(prods) != 2 {
		t.Fatalf("goal productions = %d, want 2", len(prods))
	}
	var recursive bool
	for _, p := range prods {
		if p.Recursive {
			recursive = true
			if len(p.RHS) != 2 || p.RHS[1] != g.Goal() {
				t.Errorf("recursive production malformed: %s", p)
			}
		}
	}
	if !recursive {
		t.Error("OneOrMore must compile to a self-recursive production")
	}
}

func TestCompile_TerminalIndex(t *testing.T) {
	g := buildLight(t)
	for _, term := range g.Terminals() {
		p := g.TerminalProduction(term)
		if p == nil {
			t.Fatalf("no terminal production for %s", term)
		}
		if !p.Terminal || len(p.RHS) != 1 || p.RHS[0] != term {
			t.Errorf("terminal production malformed: %s", p)
		}
	}
}

func TestLeftCorners(t *testing.T) {
	g := buildLight(t)
	goal := g.Goal()

	terms := g.LeftCornerTerminalsOf(goal)
	if len(terms) != 1 || terms[0].String() != "action" {
		t.Errorf("left-corner terminals of goal = %v, want [action]", terms)
	}

	var oneParse *Element
	for _, p := range g.Productions() {
		if p.LHS.String() == "one_parse" {
			oneParse = p.LHS
		}
	}
	if oneParse == nil {
		t.Fatal("one_parse not found")
	}
	if !g.IsLeftCorner(oneParse, goal) {
		t.Error("one_parse must be a left corner of the goal")
	}
	if g.IsLeftCorner(goal, oneParse) {
		t.Error("goal must not be a left corner of one_parse")
	}
}

func TestStreamline_FlattensNestedAnd(t *testing.T) {
	b := NewBuilder("Flat")
	nested := And(And(Literal("a"), Literal("b")), Literal("c"))
	b.Goal(nested)
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, p := range g.GoalProductions() {
		if len(p.RHS) != 3 {
			t.Errorf("nested And not flattened: %s", p)
		}
	}
}

func TestStreamline_KeepsNamedChildren(t *testing.T) {
	b := NewBuilder("Keep")
	inner := b.Define("inner", And(Literal("a"), Literal("b")))
	b.Goal(And(inner, Literal("c")))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, p := range g.GoalProductions() {
		if len(p.RHS) != 2 {
			t.Errorf("named child must not be flattened: %s", p)
		}
	}
}
