package acorn

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Resolver is anything that can resolve a value by type: a [Container], a
// [*Scope], or an in-flight [*Resolution].
type Resolver interface {
	Resolve(t reflect.Type) (reflect.Value, error)
}

// Resolution is one in-flight resolution walk. It carries the resolving scope
// and the state used for cycle detection, and is handed to registration
// factories so nested lookups stay inside the same walk.
type Resolution struct {
	scope    *Scope
	visiting map[reflect.Type]bool
	stack    []reflect.Type
}

func newResolution(s *Scope) *Resolution {
	return &Resolution{
		scope:    s,
		visiting: make(map[reflect.Type]bool),
	}
}

// Scope returns the scope the resolution runs in.
func (r *Resolution) Scope() *Scope { return r.scope }

// binder returns the container's struct field binder.
func (r *Resolution) binder() Binder { return r.scope.c.binder }

// Resolve returns the value for t within this resolution walk.
func (r *Resolution) Resolve(t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, fmt.Errorf("%w: nil type", ErrInvalidRegistration)
	}

	c := r.scope.c
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return reflect.Value{}, ErrContainerClosed
	}

	// Multi-binding: a slice of an interface type collects every explicit
	// registration assignable to the element type, unless the slice type
	// itself was registered. Elements resolve within this walk, so the slice
	// edge participates in cycle detection and scoped elements stay in the
	// resolving scope.
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Interface && !c.hasRegistration(t) {
		types := c.assignableTypes(t.Elem())
		out := reflect.MakeSlice(t, 0, len(types))
		for _, et := range types {
			v, err := r.Resolve(et)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("resolving %s: %w", et, err)
			}
			out = reflect.Append(out, v)
		}
		return out, nil
	}

	reg, err := c.registrationFor(t)
	if err != nil {
		return reflect.Value{}, err
	}

	switch reg.Lifetime {
	case Singleton:
		c.mu.RLock()
		inst, ok := c.singletons[t]
		c.mu.RUnlock()
		if ok {
			return reflect.ValueOf(inst), nil
		}
	case Scoped:
		inst, ok, err := r.scope.cached(t)
		if err != nil {
			return reflect.Value{}, err
		}
		if ok {
			return reflect.ValueOf(inst), nil
		}
	}

	if r.visiting[t] {
		return reflect.Value{}, r.circularError(t)
	}
	r.visiting[t] = true
	r.stack = append(r.stack, t)
	defer func() {
		delete(r.visiting, t)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	v, err := r.construct(reg)
	if err != nil {
		return reflect.Value{}, err
	}

	// Provided instances are caller-owned: never started, never closed.
	owned := reg.Instance == nil
	if owned {
		if s, ok := v.Interface().(Startable); ok {
			if err := s.Start(); err != nil {
				return reflect.Value{}, fmt.Errorf("starting %s: %w", t, err)
			}
		}
	}

	switch reg.Lifetime {
	case Singleton:
		c.mu.Lock()
		if prior, ok := c.singletons[t]; ok {
			// Lost a race; reuse the first instance.
			c.mu.Unlock()
			return reflect.ValueOf(prior), nil
		}
		c.singletons[t] = v.Interface()
		if owned {
			if closer, ok := v.Interface().(io.Closer); ok {
				c.closers = append(c.closers, closer)
			}
		}
		c.mu.Unlock()
	case Scoped:
		if err := r.scope.remember(t, v.Interface(), owned); err != nil {
			return reflect.Value{}, err
		}
	}

	return v, nil
}

// construct creates a new instance from a registration. Constructor
// dependencies are resolved within the same resolution walk, so cycle
// detection spans the whole graph.
func (r *Resolution) construct(reg *Registration) (reflect.Value, error) {
	switch {
	case reg.Instance != nil:
		return reflect.ValueOf(reg.Instance), nil

	case reg.Factory != nil:
		instance, err := reg.Factory(r)
		if err != nil {
			return reflect.Value{}, err
		}
		if instance == nil {
			return reflect.Value{}, fmt.Errorf("factory for %s returned nil", reg.Type)
		}
		return reflect.ValueOf(instance), nil

	default:
		fnType := reg.ctor.Type()
		args := make([]reflect.Value, fnType.NumIn())
		for i := 0; i < fnType.NumIn(); i++ {
			depType := fnType.In(i)
			dep, err := r.Resolve(depType)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("resolving %s: %w", depType, err)
			}
			args[i] = dep
		}

		results := reg.ctor.Call(args)
		if len(results) == 2 && !results[1].IsNil() {
			return reflect.Value{}, results[1].Interface().(error)
		}
		return results[0], nil
	}
}

func (r *Resolution) circularError(t reflect.Type) error {
	chain := make([]string, len(r.stack)+1)
	for i, s := range r.stack {
		chain[i] = s.String()
	}
	chain[len(r.stack)] = t.String()

	return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(chain, " -> "))
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Resolve is a generic helper that resolves a typed value from a container,
// scope or in-flight resolution. It is the recommended way to retrieve
// values:
//
//	repo, err := acorn.Resolve[*UserRepo](c)
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	t := typeOf[T]()

	val, err := r.Resolve(t)
	if err != nil {
		return zero, err
	}

	out, ok := val.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("cannot convert %s to %s", val.Type(), t)
	}
	return out, nil
}

// ResolveNamed is a generic helper that resolves a named registration:
//
//	db, err := acorn.ResolveNamed[*Database](c, "primary")
func ResolveNamed[T any](c Container, name string) (T, error) {
	var zero T
	t := typeOf[T]()

	val, err := c.ResolveNamed(name, t)
	if err != nil {
		return zero, err
	}

	out, ok := val.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("named %q: cannot convert %s to %s", name, val.Type(), t)
	}
	return out, nil
}

// ResolveAll is a generic helper that resolves every registration assignable
// to T, in registration order:
//
//	handlers, err := acorn.ResolveAll[Handler](c)
func ResolveAll[T any](c Container) ([]T, error) {
	vals, err := c.ResolveAll(typeOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(vals))
	for _, v := range vals {
		typed, ok := v.Interface().(T)
		if !ok {
			return nil, fmt.Errorf("cannot convert %s to %s", v.Type(), typeOf[T]())
		}
		out = append(out, typed)
	}
	return out, nil
}
