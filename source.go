package acorn

import (
	"fmt"
	"reflect"
)

// RegistrationAccessor lets a registration source look up the registrations
// the container already holds for a request.
type RegistrationAccessor func(req *ServiceRequest) []*Registration

// RegistrationSource is the container's unknown-service extension point.
// When a resolution finds no explicit registration, the container consults
// its sources in order; the first source returning a non-empty result wins
// and its registrations are adopted by the container.
type RegistrationSource interface {
	// RegistrationsFor returns candidate registrations for the request, or an
	// empty result to defer to other sources. A nil request is a programmer
	// error and must be reported, not swallowed.
	RegistrationsFor(req *ServiceRequest, acc RegistrationAccessor) ([]*Registration, error)

	// AdaptsComponents reports whether the source decorates registrations
	// supplied by others rather than producing primary ones.
	AdaptsComponents() bool
}

// ConcreteTypeSource supplies registrations for unregistered pointer-to-struct
// types by constructing a zero value and binding its dependency fields through
// the container's [Binder]. Fabricated instances are transient.
type ConcreteTypeSource struct{}

// RegistrationsFor implements [RegistrationSource].
func (ConcreteTypeSource) RegistrationsFor(req *ServiceRequest, _ RegistrationAccessor) ([]*Registration, error) {
	if req == nil || req.Type == nil {
		return nil, ErrNilRequest
	}
	if req.Name != "" {
		return nil, nil
	}
	t := req.Type
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, nil
	}

	return []*Registration{{
		Type:     t,
		Lifetime: Transient,
		Factory: func(res *Resolution) (any, error) {
			return autowire(res, t)
		},
	}}, nil
}

// AdaptsComponents implements [RegistrationSource].
func (ConcreteTypeSource) AdaptsComponents() bool { return false }

// autowire builds *T for a pointer-to-struct type, resolving every dependency
// field and assigning it through the container's binder.
func autowire(res *Resolution, t reflect.Type) (any, error) {
	elem := t.Elem()
	v := reflect.New(elem)
	binder := res.binder()

	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		if !injectableKind(field.Type) {
			continue
		}

		dep, err := res.Resolve(field.Type)
		if err != nil {
			return nil, fmt.Errorf("binding field %s of %s: %w", field.Name, t, err)
		}
		if err := binder.Set(v.Elem(), field, dep); err != nil {
			return nil, fmt.Errorf("binding field %s of %s: %w", field.Name, t, err)
		}
	}

	return v.Interface(), nil
}

// injectableKind reports whether a struct field type is treated as a
// dependency: interfaces and pointers to structs. Scalars, funcs, channels,
// maps, slices and bare structs are plain state, never injected.
func injectableKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Pointer:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}
