package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/specialistvlad/opgrid/internal/operation"
)

// ErrUnknownWork is returned when an identifier has no registered function.
var ErrUnknownWork = errors.New("unknown work function")

// Module is the interface that every bundle of work functions implements to
// be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the work functions known to a single application instance.
type Registry struct {
	mu    sync.RWMutex
	works map[string]operation.WorkFunc
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{works: make(map[string]operation.WorkFunc)}
}

// Load registers every module in order.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// RegisterWork registers fn under name. Registration happens at startup from
// compiled-in modules, so a duplicate or invalid entry is a programming error
// and panics.
func (r *Registry) RegisterWork(name string, fn operation.WorkFunc) {
	if fn == nil {
		panic(fmt.Sprintf("work function '%s' is nil", name))
	}
	if err := operation.ValidateWork(operation.Work{Name: name, Fn: fn}); err != nil {
		panic(fmt.Sprintf("work function '%s' cannot be registered: %v", name, err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.works[name]; exists {
		panic(fmt.Sprintf("work function with name '%s' already registered", name))
	}
	slog.Debug("Registering work function.", "name", name)
	r.works[name] = fn
}

// Work returns the named work function as an operation.Work pair.
func (r *Registry) Work(name string) (operation.Work, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.works[name]
	if !ok {
		return operation.Work{}, fmt.Errorf("%w: '%s'", ErrUnknownWork, name)
	}
	return operation.Work{Name: name, Fn: fn}, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.works[name]
	return ok
}

// Names returns every registered identifier, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.works))
	for name := range r.works {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
