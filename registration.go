package acorn

import (
	"errors"
	"fmt"
	"reflect"
)

// ServiceRequest describes one unresolved service lookup handed to a
// registration source. Name is empty for plain typed requests; named requests
// carry the registration name.
type ServiceRequest struct {
	Type reflect.Type
	Name string
}

// String formats the request for errors and logs.
func (r *ServiceRequest) String() string {
	if r == nil {
		return "<nil>"
	}
	if r.Name != "" {
		return fmt.Sprintf("%q (%s)", r.Name, r.Type)
	}
	return r.Type.String()
}

// FactoryFunc constructs an instance inside an active resolution, with access
// to the resolving scope for nested lookups.
type FactoryFunc func(res *Resolution) (any, error)

// Registration binds a service type to one way of producing it. Exactly one
// of Constructor, Instance, or Factory must be set:
//
//   - Constructor: func(deps...) T or func(deps...) (T, error), dependencies
//     resolved by parameter type.
//   - Instance: a pre-built value. The container neither starts nor closes
//     provided instances; the caller keeps ownership.
//   - Factory: a FactoryFunc invoked per activation.
type Registration struct {
	Type        reflect.Type
	Lifetime    Lifetime
	Constructor any
	Instance    any
	Factory     FactoryFunc

	// ctor caches the reflected constructor, set by normalize.
	ctor reflect.Value
}

// normalize validates the registration and fills derived fields. A nil Type
// is derived from the constructor's first return value or the instance's
// concrete type.
func (r *Registration) normalize() error {
	forms := 0
	if r.Constructor != nil {
		forms++
	}
	if r.Instance != nil {
		forms++
	}
	if r.Factory != nil {
		forms++
	}
	if forms != 1 {
		return fmt.Errorf("%w: exactly one of Constructor, Instance or Factory must be set", ErrInvalidRegistration)
	}

	switch {
	case r.Constructor != nil:
		val := reflect.ValueOf(r.Constructor)
		typ := val.Type()
		if typ.Kind() != reflect.Func {
			return fmt.Errorf("%w: constructor must be a function", ErrInvalidRegistration)
		}
		if typ.NumOut() == 0 || typ.NumOut() > 2 {
			return fmt.Errorf("%w: constructor must return (T) or (T, error)", ErrInvalidRegistration)
		}
		if typ.NumOut() == 2 {
			errType := reflect.TypeOf((*error)(nil)).Elem()
			if !typ.Out(1).Implements(errType) {
				return fmt.Errorf("%w: second return value must implement error", ErrInvalidRegistration)
			}
		}
		if r.Type == nil {
			r.Type = typ.Out(0)
		} else if !typ.Out(0).AssignableTo(r.Type) {
			return fmt.Errorf("%w: constructor returns %s, not assignable to %s", ErrInvalidRegistration, typ.Out(0), r.Type)
		}
		r.ctor = val

	case r.Instance != nil:
		instType := reflect.TypeOf(r.Instance)
		if r.Type == nil {
			r.Type = instType
		} else if !instType.AssignableTo(r.Type) {
			return fmt.Errorf("%w: instance of %s is not assignable to %s", ErrInvalidRegistration, instType, r.Type)
		}

	case r.Factory != nil:
		if r.Type == nil {
			return errors.New("registration with a factory requires an explicit Type")
		}
	}

	return nil
}

// RegisterOption configures a registration before it is stored.
type RegisterOption func(*Registration)

// WithLifetime sets the [Lifetime] of the registration. The default is
// [Singleton].
func WithLifetime(l Lifetime) RegisterOption {
	return func(r *Registration) {
		r.Lifetime = l
	}
}

// For binds the registration to an explicit service type instead of the
// constructor's return type or the instance's concrete type. Use it to
// register an implementation under one of its interfaces.
func For(t reflect.Type) RegisterOption {
	return func(r *Registration) {
		r.Type = t
	}
}

// As is the generic form of [For]:
//
//	c.RegisterInstance(&consoleLogger{}, acorn.As[Logger]())
func As[T any]() RegisterOption {
	return For(typeOf[T]())
}

// typeOf returns the reflect.Type of T itself, interface types included.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
