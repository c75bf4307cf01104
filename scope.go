package acorn

import (
	"errors"
	"io"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope is a nested lifetime scope. Scoped registrations resolved through it
// are cached on the scope, so the same scope yields the same instance while
// sibling and child scopes get independent ones.
//
// A Scope is not intended for concurrent use by multiple resolvers; each
// scope belongs to the caller that opened it.
type Scope struct {
	id     string
	c      *container
	parent *Scope

	mu        sync.Mutex
	instances map[reflect.Type]any
	closers   []io.Closer
	closed    bool
}

func newScope(c *container, parent *Scope) *Scope {
	s := &Scope{
		id:        uuid.NewString(),
		c:         c,
		parent:    parent,
		instances: make(map[reflect.Type]any),
	}
	if parent != nil {
		c.log.Debug("lifetime scope created",
			zap.String("scope", s.id),
			zap.String("parent", parent.id),
		)
	}
	return s
}

// ID returns the scope's identifier, unique per scope.
func (s *Scope) ID() string { return s.id }

// Resolve returns the value for the given type, resolving scoped
// registrations against this scope's cache.
func (s *Scope) Resolve(t reflect.Type) (reflect.Value, error) {
	return newResolution(s).Resolve(t)
}

// Scope opens a child scope.
func (s *Scope) Scope() (*Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrScopeClosed
	}
	return newScope(s.c, s), nil
}

// Close releases the scope: every io.Closer instance the scope constructed is
// closed in reverse creation order. Subsequent calls return [ErrScopeClosed].
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrScopeClosed
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.instances = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// cached returns the scope-cached instance for t, if any.
func (s *Scope) cached(t reflect.Type) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrScopeClosed
	}
	v, ok := s.instances[t]
	return v, ok, nil
}

// remember caches an instance on the scope and records its closer.
func (s *Scope) remember(t reflect.Type, instance any, ownsCloser bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	s.instances[t] = instance
	if ownsCloser {
		if closer, ok := instance.(io.Closer); ok {
			s.closers = append(s.closers, closer)
		}
	}
	return nil
}
