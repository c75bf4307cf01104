package acorn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Startable is the lifecycle capability of the container: instances the
// container constructs that implement Startable are started exactly once,
// immediately after construction. A Start failure fails the resolution.
//
// Provided instances (see [Registration].Instance) are never started; the
// caller owns their lifecycle.
type Startable interface {
	Start() error
}

var startableType = reflect.TypeOf((*Startable)(nil)).Elem()

// Container defines the interface for the dependency injection container.
// Use [NewContainer] to create an instance.
//
// Unlike a build-once container, registrations may be added at any time and
// later registrations for the same type win. This is what lets callers
// override an auto-supplied registration with a real one mid-test.
type Container interface {
	// Register stores a validated registration. Later registrations for the
	// same type replace earlier ones.
	Register(reg *Registration, opts ...RegisterOption) error

	// RegisterConstructor adds a constructor with the signature
	// func(deps...) T or func(deps...) (T, error). Dependencies are expressed
	// as function parameters and resolved by type.
	RegisterConstructor(ctor any, opts ...RegisterOption) error

	// RegisterInstance binds a pre-built value to its concrete type, or to an
	// explicit service type via [For] or [As]. The container neither starts
	// nor closes provided instances.
	RegisterInstance(instance any, opts ...RegisterOption) error

	// RegisterNamed adds a named constructor. Named registrations live in a
	// separate namespace, are resolved via [Container.ResolveNamed] or the
	// generic [ResolveNamed] helper, and are never served by registration
	// sources.
	RegisterNamed(name string, ctor any, opts ...RegisterOption) error

	// AddSource appends a registration source consulted, in order, for types
	// with no explicit registration. The first non-empty result is adopted.
	AddSource(src RegistrationSource)

	// Resolve returns the value for the given type. Resolving a slice of an
	// interface type has multi-binding semantics: it collects every explicit
	// registration assignable to the element type. Prefer the generic
	// [Resolve] helper over calling this method directly.
	Resolve(t reflect.Type) (reflect.Value, error)

	// ResolveNamed returns a freshly constructed value for the named
	// registration. The requested type t must be assignable from the
	// registration's type. Prefer the generic [ResolveNamed] helper.
	ResolveNamed(name string, t reflect.Type) (reflect.Value, error)

	// ResolveAll resolves every explicit registration whose type is
	// assignable to elem, in registration order. Registration sources are not
	// consulted.
	ResolveAll(elem reflect.Type) ([]reflect.Value, error)

	// Scope opens a nested lifetime scope. Scoped registrations resolved
	// through it are cached per scope; closing the scope closes the
	// io.Closer instances it created, in reverse creation order.
	Scope() (*Scope, error)

	// Close closes the root scope, then every container-constructed
	// singleton that implements [io.Closer], in reverse creation order. The
	// context controls the overall deadline; if it expires, remaining closers
	// are skipped and the context error is included in the result.
	//
	// Close is safe to call multiple times; subsequent calls return
	// [ErrContainerClosed].
	Close(ctx context.Context) error
}

type container struct {
	mu sync.RWMutex

	registrations map[reflect.Type]*Registration
	order         []reflect.Type
	named         map[string]*Registration
	sources       []RegistrationSource

	// singletons holds container-wide instances plus the closers recorded in
	// creation order. Close iterates closers in reverse.
	singletons map[reflect.Type]any
	closers    []io.Closer

	binder Binder
	log    *zap.Logger

	root   *Scope
	closed bool
}

// NewContainer creates an empty [Container] ready for registration.
func NewContainer(opts ...Option) Container {
	s := newSettings(opts)
	c := &container{
		registrations: make(map[reflect.Type]*Registration),
		named:         make(map[string]*Registration),
		singletons:    make(map[reflect.Type]any),
		sources:       s.sources,
		binder:        s.binder,
		log:           s.logger,
	}
	c.root = newScope(c, nil)
	return c
}

func (c *container) Register(reg *Registration, opts ...RegisterOption) error {
	if reg == nil {
		return fmt.Errorf("%w: nil registration", ErrInvalidRegistration)
	}
	for _, opt := range opts {
		opt(reg)
	}
	if err := reg.normalize(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContainerClosed
	}
	c.store(reg)
	return nil
}

// store records a normalized registration, last one wins. Caller holds the
// write lock.
func (c *container) store(reg *Registration) {
	if _, exists := c.registrations[reg.Type]; !exists {
		c.order = append(c.order, reg.Type)
	}
	c.registrations[reg.Type] = reg
	c.log.Debug("service registered",
		zap.Stringer("type", reg.Type),
		zap.Stringer("lifetime", reg.Lifetime),
	)
}

func (c *container) RegisterConstructor(ctor any, opts ...RegisterOption) error {
	return c.Register(&Registration{Constructor: ctor}, opts...)
}

func (c *container) RegisterInstance(instance any, opts ...RegisterOption) error {
	if instance == nil {
		return fmt.Errorf("%w: nil instance", ErrInvalidRegistration)
	}
	return c.Register(&Registration{Instance: instance}, opts...)
}

func (c *container) RegisterNamed(name string, ctor any, opts ...RegisterOption) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	reg := &Registration{Constructor: ctor}
	for _, opt := range opts {
		opt(reg)
	}
	if err := reg.normalize(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrContainerClosed
	}
	c.named[name] = reg
	c.log.Debug("named service registered",
		zap.String("name", name),
		zap.Stringer("type", reg.Type),
	)
	return nil
}

func (c *container) AddSource(src RegistrationSource) {
	if src == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, src)
}

// registrationFor finds the registration for t, consulting sources on a miss.
// A source result containing a registration for t is adopted into the
// container, auxiliary registrations included, so repeated resolutions across
// scopes share it. A result with no registration for t is discarded and the
// next source consulted; a miss with no source match is the ordinary
// not-found failure.
func (c *container) registrationFor(t reflect.Type) (*Registration, error) {
	c.mu.RLock()
	reg, ok := c.registrations[t]
	sources := make([]RegistrationSource, len(c.sources))
	copy(sources, c.sources)
	c.mu.RUnlock()

	if ok {
		return reg, nil
	}

	req := &ServiceRequest{Type: t}
	acc := c.accessor()
	for _, src := range sources {
		regs, err := src.RegistrationsFor(req, acc)
		if err != nil {
			return nil, err
		}

		var match *Registration
		for _, r := range regs {
			if err := r.normalize(); err != nil {
				return nil, err
			}
			if r.Type == t {
				match = r
			}
		}
		if match == nil {
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrContainerClosed
		}
		for _, r := range regs {
			c.store(r)
		}
		c.mu.Unlock()

		c.log.Debug("service supplied by source",
			zap.Stringer("type", t),
			zap.Bool("adapter", src.AdaptsComponents()),
		)
		return match, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, t)
}

// hasRegistration reports whether an explicit or adopted registration exists
// for t.
func (c *container) hasRegistration(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registrations[t]
	return ok
}

// assignableTypes returns, in registration order, the type of every explicit
// registration assignable to elem.
func (c *container) assignableTypes(elem reflect.Type) []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var types []reflect.Type
	for _, t := range c.order {
		if t.AssignableTo(elem) {
			types = append(types, t)
		}
	}
	return types
}

// accessor exposes read-only registration lookup to sources.
func (c *container) accessor() RegistrationAccessor {
	return func(req *ServiceRequest) []*Registration {
		if req == nil || req.Type == nil || req.Name != "" {
			return nil
		}
		c.mu.RLock()
		defer c.mu.RUnlock()
		if reg, ok := c.registrations[req.Type]; ok {
			return []*Registration{reg}
		}
		return nil
	}
}

func (c *container) Resolve(t reflect.Type) (reflect.Value, error) {
	return c.root.Resolve(t)
}

func (c *container) ResolveNamed(name string, t reflect.Type) (reflect.Value, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return reflect.Value{}, ErrContainerClosed
	}
	reg, ok := c.named[name]
	c.mu.RUnlock()

	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: named %q", ErrServiceNotFound, name)
	}
	if !reg.Type.AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("named registration %q has type %s, not assignable to %s", name, reg.Type, t)
	}

	res := newResolution(c.root)
	return res.construct(reg)
}

func (c *container) ResolveAll(elem reflect.Type) ([]reflect.Value, error) {
	if elem == nil {
		return nil, fmt.Errorf("%w: nil element type", ErrInvalidRegistration)
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrContainerClosed
	}

	types := c.assignableTypes(elem)
	out := make([]reflect.Value, 0, len(types))
	for _, t := range types {
		v, err := c.root.Resolve(t)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", t, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *container) Scope() (*Scope, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrContainerClosed
	}
	return c.root.Scope()
}

func (c *container) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrContainerClosed
	}
	c.closed = true
	closers := c.closers
	c.closers = nil
	root := c.root
	c.mu.Unlock()

	var errs []error
	if err := root.Close(); err != nil {
		errs = append(errs, err)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	c.log.Debug("container closed", zap.Int("closers", len(closers)))
	return errors.Join(errs...)
}
