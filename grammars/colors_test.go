package grammars

import (
	"testing"

	"github.com/kitt-ai/parsetron/parse"
)

func TestColors_SingleWordName(t *testing.T) {
	g, err := Colors()
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	parser := parse.NewRobustParser(g)
	_, result, err := parser.Parse("red")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := result.Get(); got != "red" {
		t.Errorf("Get() = %v", got)
	}
	if got := result.Lookup("rgb"); got != (RGB{255, 0, 0}) {
		t.Errorf("rgb = %v, want {255 0 0}", got)
	}
}

func TestColors_MultiWordName(t *testing.T) {
	g, err := Colors()
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}
	parser := parse.NewRobustParser(g)
	_, result, err := parser.Parse("dark green")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := result.Get(); got != "dark green" {
		t.Errorf("Get() = %v", got)
	}
	if got := result.Lookup("rgb"); got != (RGB{0, 100, 0}) {
		t.Errorf("rgb = %v, want {0 100 0}", got)
	}
}

func TestColors_IshAliases(t *testing.T) {
	rgb, ok := ColorRGB("reddish")
	if !ok {
		t.Fatal("reddish must be known")
	}
	if rgb != (RGB{255, 0, 0}) {
		t.Errorf("reddish rgb = %v", rgb)
	}
}

func TestColorNames_Complete(t *testing.T) {
	names := ColorNames()
	if len(names) < 140 {
		t.Errorf("ColorNames = %d entries, expected the full table", len(names))
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate color name %q", name)
		}
		seen[name] = true
	}
}
