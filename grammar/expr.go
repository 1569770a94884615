package grammar

import "fmt"

// And matches its children in sequence.
func And(children ...*Element) *Element {
	return &Element{kind: KindAnd, children: append([]*Element(nil), children...)}
}

// Or matches any one of its children. Alternatives are tried in
// definition order; earlier alternatives win ranking ties.
func Or(children ...*Element) *Element {
	return &Element{kind: KindOr, children: append([]*Element(nil), children...)}
}

// Optional matches its child zero or one time.
func Optional(child *Element) *Element {
	return &Element{kind: KindOptional, children: []*Element{child}}
}

// OneOrMore matches its child one or more times. Occurrences collect
// into a list in parse results.
func OneOrMore(child *Element) *Element {
	return &Element{kind: KindOneOrMore, children: []*Element{child}, asList: true}
}

// ZeroOrMore matches its child zero or more times. Occurrences collect
// into a list in parse results.
func ZeroOrMore(child *Element) *Element {
	return &Element{kind: KindZeroOrMore, children: []*Element{child}, asList: true}
}

// Unbounded marks an open upper bound for Times.
const Unbounded = -1

// Repeat matches exactly n occurrences of the element (n >= 1).
func Repeat(e *Element, n int) (*Element, error) {
	return Times(e, n, n)
}

// Times matches between min and max occurrences of the element. Pass
// Unbounded as max for an open upper bound. The bounds lower onto And,
// Or, Optional and the repetition elements:
//
//	Times(e, 0, Unbounded)  ZeroOrMore(e)
//	Times(e, 1, Unbounded)  OneOrMore(e)
//	Times(e, 0, 1)          Optional(e)
//	Times(e, m, m)          And(e, ..., e) m times
//	Times(e, m, Unbounded)  m copies followed by ZeroOrMore(e)
//	Times(e, m, n)          m copies followed by n-m Optional(e)
func Times(e *Element, min, max int) (*Element, error) {
	if min < 0 {
		return nil, errorf("repetition minimum must not be negative: %d", min)
	}
	if max == Unbounded {
		switch min {
		case 0:
			return ZeroOrMore(e), nil
		case 1:
			return OneOrMore(e), nil
		default:
			return And(append(copies(e, min), ZeroOrMore(e))...), nil
		}
	}
	if max < min {
		return nil, errorf("repetition bounds out of order: min %d, max %d", min, max)
	}
	if max == 0 {
		return nil, errorf("repetition maximum must be positive")
	}
	if min == 0 && max == 1 {
		return Optional(e), nil
	}
	if min == max {
		if min == 1 {
			return e, nil
		}
		return And(copies(e, min)...), nil
	}
	parts := copies(e, min)
	for i := min; i < max; i++ {
		parts = append(parts, Optional(e))
	}
	return And(parts...), nil
}

func copies(e *Element, n int) []*Element {
	out := make([]*Element, n)
	for i := range out {
		out[i] = e
	}
	return out
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
