package parse

// Strategy composes chart rules into a parsing discipline and seeds the
// initial edges.
type Strategy struct {
	name  string
	seed  func(r *run)
	rules []chartRule
}

func (s *Strategy) String() string { return s.name }

// StrategyByName resolves "top-down", "bottom-up" or "left-corner";
// unknown names yield nil.
func StrategyByName(name string) *Strategy {
	switch name {
	case "top-down":
		return TopDown
	case "bottom-up":
		return BottomUp
	case "left-corner":
		return LeftCorner
	}
	return nil
}

// TopDown predicts from the goal downward and scans expected terminals.
var TopDown = &Strategy{
	name: "top-down",
	seed: seedGoal,
	rules: []chartRule{
		scanRule{},
		topDownPredictRule{},
		completeRule{},
	},
}

// BottomUp seeds passive terminal edges for every token position and
// predicts upward from completions.
var BottomUp = &Strategy{
	name: "bottom-up",
	seed: seedAllTerminals,
	rules: []chartRule{
		bottomUpPredictRule{},
		completeRule{},
	},
}

// LeftCorner is the default: goal-directed like top-down, but
// prediction is triggered bottom-up by completed left corners, which
// avoids unconstrained prediction and terminates on the self-recursive
// productions repetition compiles into.
var LeftCorner = &Strategy{
	name: "left-corner",
	seed: seedGoal,
	rules: []chartRule{
		scanRule{leftCorner: true},
		leftCornerPredictRule{},
		completeRule{},
	},
}

// seedGoal inserts an active edge for every production of the goal at
// [0,0).
func seedGoal(r *run) {
	for _, p := range r.g.GoalProductions() {
		r.add(Edge{Start: 0, End: 0, Prod: p, Dot: 0}, nil, nil)
	}
}

// seedAllTerminals scans every token position against every terminal.
func seedAllTerminals(r *run) {
	n := r.tokens.Len()
	for j := 0; j < n; j++ {
		for _, t := range r.g.Terminals() {
			k := t.Match(r.tokens, j)
			if k <= j {
				continue
			}
			r.scanOK[j] = true
			tp := r.g.TerminalProduction(t)
			r.add(Edge{Start: j, End: k, Prod: tp, Dot: len(tp.RHS)}, nil, nil)
		}
	}
	seedGoal(r)
}
