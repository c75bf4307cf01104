package acorn

import (
	"reflect"

	"github.com/ARTM2000/acorn/mock"
)

// mockSource implements the container's unknown-service extension point: for
// an unresolved typed request that passes the mockability check, it supplies
// a single scoped registration whose factory asks the shared mock factory for
// an instance. Everything else yields an empty result so the container's
// ordinary not-found failure surfaces instead.
type mockSource struct {
	factory *mock.Factory

	// rootCreated reports whether the facade's caller explicitly created the
	// type; such types are never auto-mocked.
	rootCreated func(reflect.Type) bool
}

func newMockSource(factory *mock.Factory, rootCreated func(reflect.Type) bool) *mockSource {
	if rootCreated == nil {
		rootCreated = func(reflect.Type) bool { return false }
	}
	return &mockSource{factory: factory, rootCreated: rootCreated}
}

// RegistrationsFor implements [RegistrationSource]. The only explicit failure
// is the nil-request check; every "can't mock this" case is an empty result.
func (s *mockSource) RegistrationsFor(req *ServiceRequest, _ RegistrationAccessor) ([]*Registration, error) {
	if req == nil || req.Type == nil {
		return nil, ErrNilRequest
	}
	if req.Name != "" {
		// Named requests are out of scope for auto-mocking.
		return nil, nil
	}

	ok, err := s.mockable(req.Type)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	t := req.Type
	return []*Registration{{
		Type:     t,
		Lifetime: Scoped,
		Factory: func(_ *Resolution) (any, error) {
			return s.factory.Create(t)
		},
	}}, nil
}

// AdaptsComponents implements [RegistrationSource]. The source produces
// primary registrations, never decorating wrappers.
func (s *mockSource) AdaptsComponents() bool { return false }

// mockable decides whether an automatic mock may satisfy the type. It is a
// pure function of the type's shape and the root-created set: the type must
// not have been explicitly created by the caller, must be a shape the factory
// can fabricate, must not be a slice or array (those carry the container's
// multi-binding semantics), and must not be a [Startable] (a mock must never
// be invoked as a lifecycle hook).
//
// A nil type is a caller contract violation and reported as an error rather
// than a false result.
func (s *mockSource) mockable(t reflect.Type) (bool, error) {
	if t == nil {
		return false, ErrNilRequest
	}
	if s.rootCreated(t) {
		return false, nil
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return false, nil
	}
	if !s.factory.CanCreate(t) {
		return false, nil
	}
	if t.Implements(startableType) {
		return false, nil
	}
	return true, nil
}
