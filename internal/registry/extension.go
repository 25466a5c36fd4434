// Package registry tracks the custom pipes and directives discovered before
// a compilation run. Registration happens in a strictly earlier phase than
// compilation; compiles only ever see an immutable Snapshot, so a batch of
// templates can be transpiled concurrently against one registry.
package registry

import (
	"sort"
	"sync"
)

// Pipe is a registered custom pipe: a template-visible name mapped to the
// generated function that implements it.
type Pipe struct {
	Name         string
	FunctionName string
	ImportPath   string
	Interactive  bool
}

// Directive is a registered custom structural directive.
type Directive struct {
	Name         string
	FunctionName string
	ImportPath   string
	Interactive  bool
}

// ExtensionRegistry is the mutable registry populated by discovery.
type ExtensionRegistry struct {
	mutex      sync.RWMutex
	pipes      map[string]Pipe
	directives map[string]Directive
}

// NewExtensionRegistry creates an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{
		pipes:      make(map[string]Pipe),
		directives: make(map[string]Directive),
	}
}

// RegisterPipe adds or replaces a pipe registration.
func (r *ExtensionRegistry) RegisterPipe(p Pipe) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.pipes[p.Name] = p
}

// RegisterDirective adds or replaces a directive registration.
func (r *ExtensionRegistry) RegisterDirective(d Directive) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.directives[d.Name] = d
}

// Clear removes all registrations. Used between independent runs and in
// tests.
func (r *ExtensionRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.pipes = make(map[string]Pipe)
	r.directives = make(map[string]Directive)
}

// Count returns the number of registered pipes and directives.
func (r *ExtensionRegistry) Count() (pipes, directives int) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.pipes), len(r.directives)
}

// Snapshot returns an immutable copy of the current registrations. Every
// compilation call receives a Snapshot, never the registry itself.
func (r *ExtensionRegistry) Snapshot() *Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	s := &Snapshot{
		pipes:      make(map[string]Pipe, len(r.pipes)),
		directives: make(map[string]Directive, len(r.directives)),
	}
	for name, p := range r.pipes {
		s.pipes[name] = p
	}
	for name, d := range r.directives {
		s.directives[name] = d
	}
	return s
}

// Snapshot is a read-only view of the registry taken at the start of a
// compilation batch. Safe for concurrent readers.
type Snapshot struct {
	pipes      map[string]Pipe
	directives map[string]Directive
}

// EmptySnapshot returns a snapshot with no registrations.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		pipes:      map[string]Pipe{},
		directives: map[string]Directive{},
	}
}

// Pipe looks up a custom pipe by template name.
func (s *Snapshot) Pipe(name string) (Pipe, bool) {
	p, ok := s.pipes[name]
	return p, ok
}

// Directive looks up a custom directive by template name.
func (s *Snapshot) Directive(name string) (Directive, bool) {
	d, ok := s.directives[name]
	return d, ok
}

// HasPipe reports whether a custom pipe is registered.
func (s *Snapshot) HasPipe(name string) bool {
	_, ok := s.pipes[name]
	return ok
}

// HasDirective reports whether a custom directive is registered.
func (s *Snapshot) HasDirective(name string) bool {
	_, ok := s.directives[name]
	return ok
}

// PipeFunction implements the pipe engine's Resolver interface.
func (s *Snapshot) PipeFunction(name string) (string, bool) {
	p, ok := s.pipes[name]
	if !ok {
		return "", false
	}
	return p.FunctionName, true
}

// PipeNames returns the registered pipe names, sorted.
func (s *Snapshot) PipeNames() []string {
	names := make([]string, 0, len(s.pipes))
	for name := range s.pipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DirectiveNames returns the registered directive names, sorted.
func (s *Snapshot) DirectiveNames() []string {
	names := make([]string, 0, len(s.directives))
	for name := range s.directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usage records which registered extensions one compilation actually used,
// so the caller imports exactly what the template needs. Owned by a single
// compilation call.
type Usage struct {
	pipes      map[string]bool
	directives map[string]bool
	order      []string
}

// NewUsage creates an empty usage recorder.
func NewUsage() *Usage {
	return &Usage{
		pipes:      make(map[string]bool),
		directives: make(map[string]bool),
	}
}

// RecordPipe marks a custom pipe as used.
func (u *Usage) RecordPipe(name string) {
	if !u.pipes[name] {
		u.pipes[name] = true
		u.order = append(u.order, "|"+name)
	}
}

// RecordDirective marks a custom directive as used.
func (u *Usage) RecordDirective(name string) {
	if !u.directives[name] {
		u.directives[name] = true
		u.order = append(u.order, "*"+name)
	}
}

// Pipes returns used pipe names in first-use order.
func (u *Usage) Pipes() []string {
	var names []string
	for _, entry := range u.order {
		if entry[0] == '|' {
			names = append(names, entry[1:])
		}
	}
	return names
}

// Directives returns used directive names in first-use order.
func (u *Usage) Directives() []string {
	var names []string
	for _, entry := range u.order {
		if entry[0] == '*' {
			names = append(names, entry[1:])
		}
	}
	return names
}
