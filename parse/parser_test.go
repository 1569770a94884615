package parse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kitt-ai/parsetron/grammar"
)

// lightGrammar is the canonical colored-light example grammar.
func lightGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	return lightGrammarWithActions(t, nil, nil)
}

func lightGrammarWithActions(t *testing.T, colorAction, timesAction grammar.ResultAction) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder("LightGrammar")
	action := b.Define("action", grammar.StringSet("change", "flash", "set", "blink"))
	light := b.Define("light", grammar.StringSet("top", "middle", "bottom"))
	color := b.Define("color", grammar.Regex("red|yellow|blue|orange|purple"))
	times := b.Define("times", grammar.Or(
		grammar.StringSet("once", "twice", "three times"),
		grammar.Regex(`\d+ times`),
	))
	if colorAction != nil {
		color.SetResultAction(colorAction)
	}
	if timesAction != nil {
		times.SetResultAction(timesAction)
	}
	oneParse := b.Define("one_parse", grammar.And(action, light, grammar.Optional(times), color))
	b.Goal(grammar.OneOrMore(oneParse))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

// oneParses unpacks the nested one_parse results from a goal result.
func oneParses(t *testing.T, result *Result) []*Result {
	t.Helper()
	list := result.List("one_parse")
	if list == nil {
		t.Fatalf("result has no one_parse list:\n%s", result)
	}
	out := make([]*Result, len(list))
	for i, v := range list {
		sub, ok := v.(*Result)
		if !ok {
			t.Fatalf("one_parse[%d] is %T, want *Result", i, v)
		}
		out[i] = sub
	}
	return out
}

func allStrategies() []*Strategy {
	return []*Strategy{LeftCorner, TopDown, BottomUp}
}

func TestParse_SimpleCommand(t *testing.T) {
	g := lightGrammar(t)
	for _, strategy := range allStrategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			parser := NewRobustParser(g, WithStrategy(strategy))
			tree, result, err := parser.Parse("set my top light to red")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if tree == nil || result == nil {
				t.Fatal("nil tree or result")
			}
			parses := oneParses(t, result)
			if len(parses) != 1 {
				t.Fatalf("one_parse count = %d, want 1", len(parses))
			}
			first := parses[0]
			if got := first.Lookup("action"); got != "set" {
				t.Errorf("action = %v, want set", got)
			}
			if got := first.Lookup("light"); got != "top" {
				t.Errorf("light = %v, want top", got)
			}
			if got := first.Lookup("color"); got != "red" {
				t.Errorf("color = %v, want red", got)
			}
			if first.Has("times") {
				t.Errorf("times should be absent, got %v", first.Lookup("times"))
			}
			want := []any{[]any{"set", "top", "red"}}
			if diff := cmp.Diff(want, result.Get()); diff != "" {
				t.Errorf("goal value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_TwoCommands(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	_, result, err := parser.Parse("set my top light to red and change middle light to yellow")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	parses := oneParses(t, result)
	if len(parses) != 2 {
		t.Fatalf("one_parse count = %d, want 2", len(parses))
	}
	second := parses[1]
	if got := second.Lookup("action"); got != "change" {
		t.Errorf("second action = %v, want change", got)
	}
	if got := second.Lookup("light"); got != "middle" {
		t.Errorf("second light = %v, want middle", got)
	}
	if got := second.Lookup("color"); got != "yellow" {
		t.Errorf("second color = %v, want yellow", got)
	}
}

func TestParse_OptionalTimes(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	_, result, err := parser.Parse("flash bottom light twice in blue")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	parses := oneParses(t, result)
	if len(parses) != 1 {
		t.Fatalf("one_parse count = %d, want 1", len(parses))
	}
	if got := parses[0].Lookup("times"); got != "twice" {
		t.Errorf("times = %v, want twice", got)
	}
}

func TestParse_MultiTokenRegex(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	_, result, err := parser.Parse("blink middle light 20 times in yellow")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	parses := oneParses(t, result)
	if len(parses) != 1 {
		t.Fatalf("one_parse count = %d, want 1", len(parses))
	}
	if got := parses[0].Lookup("times"); got != "20 times" {
		t.Errorf("times = %v, want %q", got, "20 times")
	}
	if got := parses[0].Lookup("color"); got != "yellow" {
		t.Errorf("color = %v, want yellow", got)
	}
}

func TestParse_ResultActions(t *testing.T) {
	rgb := map[string][3]int{
		"red":    {255, 0, 0},
		"yellow": {255, 255, 0},
	}
	colorAction := func(r grammar.ResultHandle) {
		if name, ok := r.Get().(string); ok {
			r.Set(rgb[name])
		}
	}
	timesToInt := map[string]int{"once": 1, "twice": 2, "20 times": 20}
	timesAction := func(r grammar.ResultHandle) {
		if s, ok := r.Get().(string); ok {
			r.Set(timesToInt[s])
		}
	}
	g := lightGrammarWithActions(t, colorAction, timesAction)
	parser := NewRobustParser(g)
	_, result, err := parser.Parse("flash my top light twice in red and blink middle light 20 times in yellow")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	parses := oneParses(t, result)
	if len(parses) != 2 {
		t.Fatalf("one_parse count = %d, want 2", len(parses))
	}
	if got := parses[0].Lookup("color"); got != [3]int{255, 0, 0} {
		t.Errorf("first color = %v, want (255,0,0)", got)
	}
	if got := parses[0].Lookup("times"); got != 2 {
		t.Errorf("first times = %v, want 2", got)
	}
	if got := parses[1].Lookup("color"); got != [3]int{255, 255, 0} {
		t.Errorf("second color = %v, want (255,255,0)", got)
	}
	if got := parses[1].Lookup("times"); got != 20 {
		t.Errorf("second times = %v, want 20", got)
	}
}

func TestParse_SkipsUnknownTokens(t *testing.T) {
	g := lightGrammar(t)
	for _, strategy := range allStrategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			parser := NewRobustParser(g, WithStrategy(strategy))
			tree, result, err := parser.Parse("please kindly set the top light to red thanks")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			want := []any{[]any{"set", "top", "red"}}
			if diff := cmp.Diff(want, result.Get()); diff != "" {
				t.Errorf("goal value mismatch (-want +got):\n%s", diff)
			}
			if tree.Skipped() == 0 {
				t.Error("tree should report skipped tokens")
			}
		})
	}
}

func TestParse_SkipLimit(t *testing.T) {
	g := lightGrammar(t)

	strict := NewRobustParser(g, WithSkipLimit(0))
	if _, _, err := strict.Parse("set my top light to red"); err == nil {
		t.Error("skip limit 0 must reject input with junk tokens")
	}
	if _, _, err := strict.Parse("set top red"); err != nil {
		t.Errorf("skip limit 0 must still parse clean input: %v", err)
	}

	generous := NewRobustParser(g, WithSkipLimit(3))
	if _, _, err := generous.Parse("set my top light to red"); err != nil {
		t.Errorf("three skips needed, limit 3: %v", err)
	}
	tight := NewRobustParser(g, WithSkipLimit(2))
	if _, _, err := tight.Parse("set my top light to red"); err == nil {
		t.Error("three skips needed, limit 2 must fail")
	}
}

func TestParse_Ambiguity_LeftmostAlternativeWins(t *testing.T) {
	b := grammar.NewBuilder("Ambiguous")
	a := b.Define("a", grammar.StringSet("a"))
	first := b.Define("first", grammar.StringSet("x"))
	second := b.Define("second", grammar.StringSet("x"))
	b.Goal(grammar.Or(
		grammar.And(a, first),
		grammar.And(a, second),
	))
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	parser := NewRobustParser(g)
	_, result, err := parser.Parse("a x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.Has("first") {
		t.Errorf("leftmost alternative must win:\n%s", result)
	}
	if result.Has("second") {
		t.Errorf("second alternative chosen over first:\n%s", result)
	}
}

func TestParseMulti_ReturnsRankedParses(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	candidates, err := parser.ParseMulti("set top red", 3)
	if err != nil {
		t.Fatalf("ParseMulti: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("no candidates")
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i-1].Tree.Size() > candidates[i].Tree.Size() {
			t.Errorf("candidates out of order: size %d before %d",
				candidates[i-1].Tree.Size(), candidates[i].Tree.Size())
		}
	}
}

func TestParseIncremental_PrefixEvents(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	var ends []int
	_, result, err := parser.ParseIncremental(
		"set top red and change middle yellow",
		func(p Prefix) bool {
			if p.Improved {
				ends = append(ends, p.End)
			}
			return false
		})
	if err != nil {
		t.Fatalf("ParseIncremental: %v", err)
	}
	if len(ends) < 2 {
		t.Fatalf("expected at least two improving prefixes, got %v", ends)
	}
	for i := 1; i < len(ends); i++ {
		if ends[i] <= ends[i-1] {
			t.Errorf("improving prefixes must grow: %v", ends)
		}
	}
	if len(oneParses(t, result)) != 2 {
		t.Error("final parse must still cover both commands")
	}
}

func TestParseIncremental_ListenerStops(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	calls := 0
	tree, _, err := parser.ParseIncremental(
		"set top red and change middle yellow",
		func(p Prefix) bool {
			calls++
			return true
		})
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
	// The best parse found before the stop is returned, or a failure if
	// nothing spanned yet.
	if err == nil && tree == nil {
		t.Error("stopped parse must return either a tree or an error")
	}
}

func TestParse_FailureDiagnostics(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g, WithSkipLimit(0))
	_, _, err := parser.Parse("set top banana")
	var failure *ParseFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *ParseFailure", err)
	}
	if failure.Furthest != 2 {
		t.Errorf("furthest = %d, want 2", failure.Furthest)
	}
	var hasColor bool
	for _, name := range failure.Expected {
		if name == "color" {
			hasColor = true
		}
	}
	if !hasColor {
		t.Errorf("expected terminals %v must mention color", failure.Expected)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	_, _, err := parser.Parse("   ")
	var failure *ParseFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *ParseFailure", err)
	}
}

func TestParse_StepBudget(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g, WithStepBudget(1))
	_, _, err := parser.Parse("set top red")
	var budget *BudgetExceeded
	if !errors.As(err, &budget) {
		t.Fatalf("err = %v, want *BudgetExceeded", err)
	}
	if budget.Steps < 1 {
		t.Errorf("steps = %d", budget.Steps)
	}
}

func TestParse_CaseInsensitiveByDefault(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)
	if _, _, err := parser.Parse("SET Top RED"); err != nil {
		t.Errorf("default matching must fold case: %v", err)
	}

	sensitive := NewRobustParser(g, CaseSensitive(), WithSkipLimit(0))
	if _, _, err := sensitive.Parse("SET Top RED"); err == nil {
		t.Error("case-sensitive matching must reject folded input")
	}
	if _, _, err := sensitive.Parse("set top red"); err != nil {
		t.Errorf("case-sensitive matching must accept exact input: %v", err)
	}
}

func TestParse_RepetitionBounds(t *testing.T) {
	mustGoal := func(min, max int) *grammar.Grammar {
		b := grammar.NewBuilder("Rep")
		s := b.Define("t", grammar.Literal("t"))
		goal, err := grammar.Times(s, min, max)
		if err != nil {
			t.Fatalf("Times(%d,%d): %v", min, max, err)
		}
		b.Goal(goal)
		g, err := b.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		return g
	}
	parses := func(g *grammar.Grammar, input string) bool {
		parser := NewRobustParser(g, WithSkipLimit(0))
		_, _, err := parser.Parse(input)
		return err == nil
	}

	oneToTwo := mustGoal(1, 2)
	if !parses(oneToTwo, "t") || !parses(oneToTwo, "t t") {
		t.Error("1..2 repetitions must accept one and two tokens")
	}
	if parses(oneToTwo, "t t t") {
		t.Error("1..2 repetitions must reject three tokens")
	}

	threePlus := mustGoal(3, grammar.Unbounded)
	if parses(threePlus, "t t") {
		t.Error("3.. repetitions must reject two tokens")
	}
	if !parses(threePlus, "t t t") || !parses(threePlus, "t t t t t") {
		t.Error("3.. repetitions must accept three or more tokens")
	}

	threeToFive := mustGoal(3, 5)
	if parses(threeToFive, "t t") || parses(threeToFive, "t t t t t t") {
		t.Error("3..5 repetitions out of bounds must fail")
	}
	if !parses(threeToFive, "t t t") || !parses(threeToFive, "t t t t t") {
		t.Error("3..5 repetitions in bounds must parse")
	}

	exactlyThree := mustGoal(3, 3)
	if parses(exactlyThree, "t t") || parses(exactlyThree, "t t t t") {
		t.Error("exactly-3 repetition out of bounds must fail")
	}
	if !parses(exactlyThree, "t t t") {
		t.Error("exactly-3 repetition must parse three tokens")
	}
}

func TestSuggest(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)

	start := parser.Suggest("")
	if diff := cmp.Diff([]string{"blink", "change", "flash", "set"}, start); diff != "" {
		t.Errorf("suggestions at start (-want +got):\n%s", diff)
	}

	after := parser.Suggest("set top")
	var hasTwice bool
	for _, s := range after {
		if s == "twice" {
			hasTwice = true
		}
	}
	if !hasTwice {
		t.Errorf("suggestions after %q = %v, want to include %q", "set top", after, "twice")
	}
}
