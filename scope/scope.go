// Package scope implements the binding graph ("memory") used by the Femira
// virtual machine.
//
// Scopes form a tree. A function call derives a child scope from the scope
// the function was bound in: the child starts as a snapshot of its parent's
// bindings plus the call's parameters, and stays registered under the
// parent until the call returns. Captured variables are kept in sync by
// propagation rather than by sharing storage: writing a name pushes the new
// value into every registered child that already binds the name and into
// every ancestor, up to the first ancestor that does not bind it.
//
// A Scope is not safe for concurrent use.
package scope

import (
	"sort"

	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/object"
)

// Scope is one node of the binding graph.
type Scope struct {
	bindings map[string]object.Object
	parent   *Scope
	children []*Scope
}

// New returns an empty root scope.
func New() *Scope {
	return &Scope{bindings: map[string]object.Object{}}
}

// NewWithBindings returns a root scope holding the given bindings.
func NewWithBindings(bindings map[string]object.Object) *Scope {
	s := New()
	for _, name := range object.Keys(bindings) {
		s.Write(name, bindings[name])
	}
	return s
}

// Read returns the value bound to name in this scope. Parents are not
// consulted; a miss is a lookup error.
func (s *Scope) Read(name string) (object.Object, error) {
	value, ok := s.bindings[name]
	if !ok {
		return nil, errz.Newf(errz.ErrLookup, "undefined name %q", name).
			WithHint(errz.FormatSuggestions(errz.Suggest(name, s.Names())))
	}
	return value, nil
}

// Get returns the value bound to name and whether it exists.
func (s *Scope) Get(name string) (object.Object, bool) {
	value, ok := s.bindings[name]
	return value, ok
}

// Has reports whether name is bound in this scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

// Write binds name to value and propagates the change through the graph.
// Writing the value a name already holds is a no-op, which also ends the
// propagation walk.
func (s *Scope) Write(name string, value object.Object) {
	s.write(name, value, nil)
}

// write visits each scope of the tree at most once: from is the neighbor
// that forwarded the write and is never written back.
func (s *Scope) write(name string, value object.Object, from *Scope) {
	if current, ok := s.bindings[name]; ok && object.Same(current, value) {
		return
	}
	s.bindings[name] = value
	for _, child := range s.children {
		if child != from && child.Has(name) {
			child.write(name, value, s)
		}
	}
	if s.parent != nil && s.parent != from && s.parent.Has(name) {
		s.parent.write(name, value, s)
	}
}

// Derive creates a call scope: a snapshot of this scope's bindings with
// params[i] bound to args[i], registered as a child of this scope. The
// caller must Release it when the call returns.
func (s *Scope) Derive(params []string, args []object.Object) (*Scope, error) {
	if len(params) != len(args) {
		return nil, errz.Newf(errz.ErrRuntime,
			"expected %d arguments, got %d", len(params), len(args))
	}
	child := &Scope{bindings: make(map[string]object.Object, len(s.bindings)+len(params))}
	for name, value := range s.bindings {
		child.bindings[name] = value
	}
	// Parameters are bound before the child is linked so they stay local.
	for i, name := range params {
		child.Write(name, args[i])
	}
	child.parent = s
	s.children = append(s.children, child)
	return child, nil
}

// Release de-registers a derived scope from its parent. It is safe to call
// more than once.
func (s *Scope) Release() {
	if s.parent == nil {
		return
	}
	siblings := s.parent.children
	for i, c := range siblings {
		if c == s {
			s.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	s.parent = nil
}

// Parent returns the scope this one was derived from, or nil.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// ChildCount returns the number of registered child scopes.
func (s *Scope) ChildCount() int {
	return len(s.children)
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	return len(s.bindings)
}

// Names returns the bound names, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the bindings.
func (s *Scope) Snapshot() map[string]object.Object {
	result := make(map[string]object.Object, len(s.bindings))
	for name, value := range s.bindings {
		result[name] = value
	}
	return result
}
