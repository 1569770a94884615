package grammars

import "github.com/kitt-ai/parsetron/grammar"

// TimesElement builds the repetition-count element inside b and returns
// its goal: "once", "twice", "thrice", or a number followed by
// "time"/"times", evaluating to the int count.
func TimesElement(b *grammar.Builder) *grammar.Element {
	special := b.Define("special", grammar.Or(
		replacedString("once", 1),
		replacedString("twice", 2),
		replacedString("thrice", 3),
	))
	number := NumberElement(b)
	return b.Define("times", grammar.Or(
		special,
		grammar.And(number, grammar.StringSet("times", "time").Ignore()),
	))
}

// Times compiles the standalone repetition-count grammar.
func Times() (*grammar.Grammar, error) {
	b := grammar.NewBuilder("Times")
	b.Goal(TimesElement(b))
	return b.Build()
}
