package parse

import "testing"

func TestTokenize_CollapsesWhitespace(t *testing.T) {
	tokens := Tokenize("  set   my\ttop  light ", false)
	if tokens.Len() != 4 {
		t.Fatalf("Len = %d, want 4", tokens.Len())
	}
	if got := tokens.Span(1, 3); got != "my top" {
		t.Errorf("Span(1,3) = %q", got)
	}
}

func TestTokenize_FoldingPreservesOriginal(t *testing.T) {
	tokens := Tokenize("SET Top", false)
	if got := tokens.Token(0); got != "SET" {
		t.Errorf("Token(0) = %q, original case must be preserved", got)
	}
	if got := tokens.Fold(0); got != "set" {
		t.Errorf("Fold(0) = %q", got)
	}
	if got := tokens.FoldSpan(0, 2); got != "set top" {
		t.Errorf("FoldSpan = %q", got)
	}
}

func TestTokenize_CaseSensitive(t *testing.T) {
	tokens := Tokenize("SET Top", true)
	if !tokens.CaseSensitive() {
		t.Fatal("CaseSensitive must report true")
	}
	if got := tokens.Fold(0); got != "SET" {
		t.Errorf("Fold(0) = %q, sensitive folding must not lower", got)
	}
}

func TestTreeNode_SizeAndSkipped(t *testing.T) {
	g := lightGrammar(t)
	parser := NewRobustParser(g)

	clean, _, err := parser.Parse("set top red")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if clean.Skipped() != 0 {
		t.Errorf("clean parse Skipped = %d, want 0", clean.Skipped())
	}

	noisy, _, err := parser.Parse("set my top light to red")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if noisy.Skipped() != 3 {
		t.Errorf("noisy parse Skipped = %d, want 3", noisy.Skipped())
	}
	if noisy.Size() < clean.Size() {
		t.Errorf("noisy tree smaller than clean tree: %d < %d", noisy.Size(), clean.Size())
	}
	if clean.Text() != "set top red" {
		t.Errorf("Text = %q", clean.Text())
	}
	if noisy.Text() != "set top red" {
		t.Errorf("noisy Text = %q, skipped tokens must be excluded", noisy.Text())
	}
}
