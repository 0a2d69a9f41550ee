package loader

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var errBadArgs = errors.New("unexpected stage arguments")

// state is the data shared by the stages of one run.
type state struct {
	commit   CommitFunc
	sources  map[string]string
	mods     []string
	bindings map[string][]string
	plans    []injectionPlan
	modified map[string]string
}

// injectionPlan is the per-mod output of injection planning.
type injectionPlan struct {
	Mod     string   `cty:"mod"`
	Targets []string `cty:"targets"`
}

func newState(sources map[string]string, commit CommitFunc) *state {
	return &state{
		commit:   commit,
		sources:  sources,
		bindings: make(map[string][]string),
	}
}

// paths returns the source paths in sorted order.
func (s *state) paths() []string {
	return slices.Sorted(maps.Keys(s.sources))
}

// stateArg extracts the run state passed down by the root stage.
func stateArg(args []any) (*state, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing run state", errBadArgs)
	}
	st, ok := args[0].(*state)
	if !ok {
		return nil, fmt.Errorf("%w: got %T, want run state", errBadArgs, args[0])
	}
	return st, nil
}

// harnessArgs extracts the callbacks given to Initialize.
func harnessArgs(args []any) (FetchFunc, CommitFunc, error) {
	if len(args) < 2 {
		return nil, nil, fmt.Errorf("%w: want fetch and commit callbacks, got %d arguments", errBadArgs, len(args))
	}
	fetch, ok := args[0].(FetchFunc)
	if !ok {
		return nil, nil, fmt.Errorf("%w: got %T, want FetchFunc", errBadArgs, args[0])
	}
	commit, ok := args[1].(CommitFunc)
	if !ok {
		return nil, nil, fmt.Errorf("%w: got %T, want CommitFunc", errBadArgs, args[1])
	}
	return fetch, commit, nil
}

// sizes summarises a source map as path to byte length.
func sizes(sources map[string]string) map[string]int {
	out := make(map[string]int, len(sources))
	for path, src := range sources {
		out[path] = len(src)
	}
	return out
}
