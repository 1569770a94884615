package grammars

import (
	"strconv"

	"github.com/kitt-ai/parsetron/grammar"
)

// replacedString builds a literal whose result value is replaced by v.
func replacedString(s string, v int) *grammar.Element {
	return grammar.Literal(s).ReplaceResultWith(v)
}

// asInt coerces a result value to an int; a non-empty list unwraps to
// its first element.
func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case []any:
		if len(x) > 0 {
			return asInt(x[0])
		}
	}
	return 0, false
}

// resultSum replaces a list value with the sum of its elements; scalar
// values pass through.
func resultSum(r grammar.ResultHandle) {
	list, ok := r.Get().([]any)
	if !ok {
		return
	}
	sum := 0
	for _, v := range list {
		n, ok := asInt(v)
		if !ok {
			return
		}
		sum += n
	}
	r.Set(sum)
}

// resultMul replaces a list value with the product of its elements;
// scalar values pass through.
func resultMul(r grammar.ResultHandle) {
	list, ok := r.Get().([]any)
	if !ok {
		return
	}
	product := 1
	for _, v := range list {
		n, ok := asInt(v)
		if !ok {
			return
		}
		product *= n
	}
	r.Set(product)
}

var singleNumbers = []struct {
	word  string
	value int
}{
	{"zero", 0}, {"o", 0}, {"oh", 0}, {"nada", 0}, {"one", 1},
	{"a", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
	{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
	{"eleven", 11}, {"twelve", 12}, {"thirteen", 13}, {"fourteen", 14},
	{"forteen", 14}, {"fifteen", 15}, {"sixteen", 16}, {"seventeen", 17},
	{"eighteen", 18}, {"nineteen", 19},
}

var tenNumbers = []struct {
	word  string
	value int
}{
	{"ten", 10}, {"twenty", 20}, {"thirty", 30}, {"forty", 40},
	{"fourty", 40}, {"fifty", 50}, {"sixty", 60}, {"seventy", 70},
	{"eighty", 80}, {"ninety", 90},
}

var magnitudeNumbers = []struct {
	word  string
	value int
}{
	{"hundred", 100}, {"thousand", 1000}, {"million", 1000000},
	{"billion", 1000000000}, {"trillion", 1000000000000},
}

// NumberElement builds the spoken-cardinal-number element inside b and
// returns its goal: digit strings and phrases like "seventy eight
// thousand nine hundred twenty one" evaluate to their int value through
// result actions that sum and multiply child values.
func NumberElement(b *grammar.Builder) *grammar.Element {
	digits := b.Define("digits", grammar.Regex(`\d+`).SetResultAction(func(r grammar.ResultHandle) {
		if s, ok := r.Get().(string); ok {
			if n, err := strconv.Atoi(s); err == nil {
				r.Set(n)
			}
		}
	}))

	singles := make([]*grammar.Element, len(singleNumbers))
	for i, m := range singleNumbers {
		singles[i] = replacedString(m.word, m.value)
	}
	single := b.Define("single", grammar.Or(singles...))

	tens := make([]*grammar.Element, len(tenNumbers))
	for i, m := range tenNumbers {
		tens[i] = replacedString(m.word, m.value)
	}
	ten := b.Define("ten", grammar.Or(tens...))

	double := b.Define("double", grammar.Or(
		grammar.And(grammar.Optional(ten), grammar.Optional(single)).SetResultAction(resultSum),
		digits,
	))

	aHundred := replacedString("hundred", 100)

	magnitudes := make([]*grammar.Element, len(magnitudeNumbers))
	for i, m := range magnitudeNumbers {
		magnitudes[i] = replacedString(m.word, m.value)
	}
	magnitude := b.Define("magnitude", grammar.Or(magnitudes...))
	magnitudes0 := b.Define("magnitudes", grammar.ZeroOrMore(magnitude).SetResultAction(resultMul))

	hundred := b.Define("hundred", grammar.And(
		grammar.And(double, aHundred).SetResultAction(resultMul),
		grammar.Optional(double),
	).SetResultAction(resultSum))

	unit := b.Define("unit", grammar.And(
		grammar.Or(double, hundred),
		magnitudes0,
	).SetResultAction(resultMul))

	return b.Define("number", grammar.OneOrMore(unit).SetResultAction(resultSum))
}

// Numbers compiles the standalone spoken-number grammar.
func Numbers() (*grammar.Grammar, error) {
	b := grammar.NewBuilder("Numbers")
	b.Goal(NumberElement(b))
	return b.Build()
}
