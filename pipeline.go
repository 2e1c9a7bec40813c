package nodearea

import (
	"context"
	"sync"
)

// Signal is a message flowing through a Scope. The set is open: host
// editors and extensions define their own signal types alongside the ones
// in this package.
type Signal interface {
	SignalType() string
}

// Pipe observes, rewrites or drops a signal. Returning a nil signal stops
// the chain; returning an error stops it and is reported to the emitter.
type Pipe func(ctx context.Context, s Signal) (Signal, error)

// Scope is an ordered chain of pipes.
type Scope struct {
	name string

	mu     sync.RWMutex
	pipes  []Pipe
	parent *Scope
}

// NewScope creates an empty scope.
func NewScope(name string) *Scope {
	return &Scope{name: name}
}

// Name returns the scope name.
func (s *Scope) Name() string {
	return s.name
}

// AddPipe appends p to the chain.
func (s *Scope) AddPipe(p Pipe) {
	s.mu.Lock()
	s.pipes = append(s.pipes, p)
	s.mu.Unlock()
}

// Emit passes sig through every pipe in registration order and returns what
// the last pipe produced. A nil result means some pipe dropped the signal;
// for guard signals that is a veto. Pipes added while Emit runs apply from
// the next Emit.
func (s *Scope) Emit(ctx context.Context, sig Signal) (Signal, error) {
	s.mu.RLock()
	pipes := make([]Pipe, len(s.pipes))
	copy(pipes, s.pipes)
	s.mu.RUnlock()

	var err error
	for _, p := range pipes {
		if sig == nil {
			return nil, nil
		}
		if sig, err = p(ctx, sig); err != nil {
			return nil, err
		}
	}
	return sig, nil
}

// Use makes child a consumer of this scope: every signal reaching the end
// of the chain so far is passed through child's pipes, and whatever child
// returns continues down this chain.
func (s *Scope) Use(child *Scope) {
	child.mu.Lock()
	child.parent = s
	child.mu.Unlock()
	s.AddPipe(child.Emit)
}

// Parent returns the scope this one was attached to with Use, or nil.
func (s *Scope) Parent() *Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parent
}
