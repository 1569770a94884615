package grammars

import (
	"testing"

	"github.com/kitt-ai/parsetron/parse"
)

var numberSentences = []struct {
	input string
	want  int
}{
	{"zero", 0},
	{"twelve", 12},
	{"twenty", 20},
	{"twenty three", 23},
	{"23", 23},
	{"eight hundred fifty eight", 858},
	{"one hundred twenty five", 125},
	{"seventy three", 73},
	{"twelve hundred thirty five", 1235},
	{"twenty two hundred thirty five", 2235},
	{"two thousand", 2000},
	{"two thousand two hundred thirty five", 2235},
	{"seventy eight thousand nine hundred twenty one", 78921},
	{"seven hundred eighty nine thousand twenty one", 789021},
	{"one million sixty one", 1000061},
	{"1 million sixty one", 1000061},
	{"1 million 61", 1000061},
	{"twenty three million seven hundred eighty nine thousand", 23789000},
	{"one hundred thousand sixty one", 100061},
	{"one hundred thousand five hundred sixty one", 100561},
	{"1 hundred thousand 5 hundred 61", 100561},
}

func TestNumbers_Sentences(t *testing.T) {
	g, err := Numbers()
	if err != nil {
		t.Fatalf("Numbers: %v", err)
	}
	parser := parse.NewRobustParser(g)
	for _, s := range numberSentences {
		_, result, err := parser.Parse(s.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", s.input, err)
			continue
		}
		if got := result.Get(); got != s.want {
			t.Errorf("Parse(%q) = %v, want %d", s.input, got, s.want)
		}
	}
}

func TestNumbers_DigitsAction(t *testing.T) {
	g, err := Numbers()
	if err != nil {
		t.Fatalf("Numbers: %v", err)
	}
	parser := parse.NewRobustParser(g)
	_, result, err := parser.Parse("42")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := result.Get(); got != 42 {
		t.Errorf("Get() = %v (%T), want int 42", got, got)
	}
}
