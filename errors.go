package acorn

import "errors"

var (
	// ErrServiceNotFound is returned when no registration exists for the
	// requested type or name and no registration source supplies one.
	ErrServiceNotFound = errors.New("service not found")

	// ErrCircularDependency is returned when the dependency graph contains a
	// cycle. The error message includes the full chain.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrContainerClosed is returned when a registration or resolution is
	// attempted after the container has been closed, or when Close is called
	// twice.
	ErrContainerClosed = errors.New("container closed")

	// ErrScopeClosed is returned when resolving through a closed lifetime
	// scope, or when a scope is closed twice.
	ErrScopeClosed = errors.New("scope closed")

	// ErrNilRequest is returned when a nil service request reaches a
	// registration source. A nil request is a programmer error, distinct from
	// a request the source simply cannot serve.
	ErrNilRequest = errors.New("nil service request")

	// ErrInvalidRegistration is returned when a registration carries no
	// construction form, more than one, or a constructor with the wrong
	// shape.
	ErrInvalidRegistration = errors.New("invalid registration")
)
