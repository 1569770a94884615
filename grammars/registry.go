package grammars

import (
	"fmt"
	"sort"

	"github.com/kitt-ai/parsetron/grammar"
)

var registry = map[string]func() (*grammar.Grammar, error){
	"colors":        Colors,
	"numbers":       Numbers,
	"times":         Times,
	"colored-light": ColoredLight,
}

// Names lists the built-in grammars.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName compiles a built-in grammar.
func ByName(name string) (*grammar.Grammar, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown grammar %q (have: %v)", name, Names())
	}
	return build()
}
