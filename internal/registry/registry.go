// Package registry is the static, compile-time map from suggestion type
// to model constructor. There is no dynamic plugin discovery: adding a
// model means registering it from its package's init() and recompiling
// a binary that imports that package, trading runtime
// flexibility for a supply chain that never loads unreviewed code.
package registry

import (
	"fmt"
	"sort"

	"github.com/storium/figmentator/internal/figmodel"
)

// Constructor builds a fresh, unstarted Model instance. A pool calls this
// once per worker it creates (once per subprocess, or once per
// in-process worker slot).
type Constructor func() figmodel.Model

var constructors = map[figmodel.SuggestionType]Constructor{}

// Register adds a constructor for a suggestion type. Intended to be
// called from an init() function in the package that implements the
// model. Registering the same type twice is a programming error and
// panics, the same way net/http's ServeMux.Handle or sql.Register would.
func Register(t figmodel.SuggestionType, constructor Constructor) {
	if _, exists := constructors[t]; exists {
		panic(fmt.Sprintf("registry: suggestion type %q registered twice", t))
	}
	constructors[t] = constructor
}

// New builds a fresh Model for the given suggestion type, or an error if
// no model was registered for it.
func New(t figmodel.SuggestionType) (figmodel.Model, error) {
	constructor, ok := constructors[t]
	if !ok {
		return nil, fmt.Errorf("registry: no model registered for suggestion type %q", t)
	}
	return constructor(), nil
}

// Types returns every registered suggestion type, sorted for deterministic
// iteration (startup order, log output).
func Types() []figmodel.SuggestionType {
	types := make([]figmodel.SuggestionType, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
