package task

import (
	"sort"
	"strings"
)

// Factory creates a task for a registered kind from a location token.
// Returning an error makes the whole routine load fail.
type Factory func(location string) (Task, error)

// Registry maps task-kind strings to factory functions. Kinds are
// case-insensitive; the last registration for a kind wins. A registry
// is built once per game configuration and read-only during execution.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for a task kind.
func (r *Registry) Register(kind string, factory Factory) {
	r.factories[strings.ToUpper(kind)] = factory
}

// Create builds a task from an "ACTION:LOCATION" token.
// Returns a ParseError if the token is malformed or the action has no
// registered factory.
func (r *Registry) Create(token string) (Task, error) {
	action, location, ok := strings.Cut(token, ":")
	if !ok {
		return Task{}, parseErrorf(token, "expected ACTION:LOCATION")
	}

	factory, registered := r.factories[strings.ToUpper(strings.TrimSpace(action))]
	if !registered {
		return Task{}, parseErrorf(token, "unknown action %q", action)
	}

	t, err := factory(strings.TrimSpace(location))
	if err != nil {
		return Task{}, &ParseError{Token: token, Reason: "factory failed", Err: err}
	}
	return t, nil
}

// IsRegistered reports whether a factory exists for the kind.
func (r *Registry) IsRegistered(kind string) bool {
	_, ok := r.factories[strings.ToUpper(kind)]
	return ok
}

// Kinds returns the registered task kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
