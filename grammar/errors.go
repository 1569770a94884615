package grammar

// Error reports a problem with a grammar's composition or compilation:
// a missing or unreachable GOAL, a cyclic element graph, an empty
// terminal, or a regex that does not compile. A grammar that produced
// an Error is unusable.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "grammar: " + e.Message
}
