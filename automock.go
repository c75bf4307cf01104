package acorn

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/ARTM2000/acorn/mock"
)

// AutoMock is a composition root for tests: it owns a container and a shared
// mock factory, and wires them so that any unregistered dependency that can
// be mocked is satisfied with an auto-created mock. Types the caller builds
// explicitly through [Create] are exempted from auto-mocking of themselves;
// their dependencies are still mocked.
//
// An AutoMock is intended for exclusive use within one test; acquire it at
// the start and make sure [AutoMock.Close] runs on every exit path:
//
//	am := acorn.New()
//	defer am.Close()
type AutoMock struct {
	c       Container
	factory *mock.Factory
	log     *zap.Logger

	mu        sync.RWMutex
	created   map[reflect.Type]struct{}
	verifyAll bool
	closed    bool
}

// New creates a loose AutoMock: calls on auto-created mocks with no matching
// expectation are answered with zero values.
func New(opts ...Option) *AutoMock {
	return newAutoMock(mock.Loose, opts)
}

// NewStrict creates a strict AutoMock: every call on an auto-created mock
// must have a matching expectation, or it fails immediately at call time.
func NewStrict(opts ...Option) *AutoMock {
	return newAutoMock(mock.Strict, opts)
}

func newAutoMock(mode mock.Mode, opts []Option) *AutoMock {
	s := newSettings(opts)
	am := &AutoMock{
		factory:   mock.NewFactory(mode),
		log:       s.logger,
		created:   make(map[reflect.Type]struct{}),
		verifyAll: s.verifyAll,
	}

	containerOpts := []Option{
		WithLogger(s.logger),
		WithBinder(s.binder),
	}
	for _, src := range s.sources {
		containerOpts = append(containerOpts, WithSource(src))
	}
	// Mock source first: unregistered dependencies become mocks. The
	// concrete source then serves explicitly created struct types, which the
	// mock source refuses.
	containerOpts = append(containerOpts,
		WithSource(newMockSource(am.factory, am.isRootCreated)),
		WithSource(ConcreteTypeSource{}),
	)
	am.c = NewContainer(containerOpts...)

	am.log.Debug("automock created", zap.Stringer("mode", mode))
	return am
}

// Container returns the underlying container for advanced registration.
func (am *AutoMock) Container() Container { return am.c }

// Factory returns the shared mock factory.
func (am *AutoMock) Factory() *mock.Factory { return am.factory }

// isRootCreated is the mock source's view of the root-created set.
func (am *AutoMock) isRootCreated(t reflect.Type) bool {
	am.mu.RLock()
	defer am.mu.RUnlock()
	_, ok := am.created[t]
	return ok
}

func (am *AutoMock) markCreated(t reflect.Type) error {
	am.mu.Lock()
	defer am.mu.Unlock()
	if am.closed {
		return ErrContainerClosed
	}
	am.created[t] = struct{}{}
	return nil
}

// Close releases the container and, when the facade was constructed with
// [WithVerifyAll], verifies every mock ever created through it. Subsequent
// calls are no-ops.
func (am *AutoMock) Close() error {
	am.mu.Lock()
	if am.closed {
		am.mu.Unlock()
		return nil
	}
	am.closed = true
	verify := am.verifyAll
	am.created = make(map[reflect.Type]struct{})
	am.mu.Unlock()

	var errs []error
	if err := am.c.Close(context.Background()); err != nil {
		errs = append(errs, err)
	}
	if verify {
		if err := am.factory.VerifyAll(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Create resolves T from the container, recording T in the root-created set
// first so T itself is never replaced by a mock; its unregistered
// dependencies still are. Container failures propagate unchanged.
func Create[T any](am *AutoMock) (T, error) {
	var zero T
	t := typeOf[T]()
	if err := am.markCreated(t); err != nil {
		return zero, err
	}
	am.log.Debug("creating root", zap.Stringer("type", t))
	return Resolve[T](am.c)
}

// Provide registers a pre-built instance for service type S, overriding what
// auto-mocking would otherwise supply. Callable at any point; the last
// registration for a type wins.
func Provide[S any](am *AutoMock, instance S) error {
	return am.c.RegisterInstance(instance, For(typeOf[S]()))
}

// ProvideConstructor registers a constructor, dependencies resolved by
// parameter type as usual.
func ProvideConstructor(am *AutoMock, ctor any, opts ...RegisterOption) error {
	return am.c.RegisterConstructor(ctor, opts...)
}

// ProvideImplementation registers concrete type I as the implementation of
// service type S. I is resolved through the container, so its own
// dependencies are auto-mocked like anything else.
func ProvideImplementation[S any, I any](am *AutoMock) error {
	s, i := typeOf[S](), typeOf[I]()
	if !i.AssignableTo(s) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrInvalidRegistration, i, s)
	}
	return am.c.Register(&Registration{
		Type:     s,
		Lifetime: Scoped,
		Factory: func(res *Resolution) (any, error) {
			v, err := res.Resolve(i)
			if err != nil {
				return nil, err
			}
			return v.Interface(), nil
		},
	})
}

// RegisterMock registers a mock constructor for interface type T with the
// shared factory. The constructed value must embed [mock.Mock].
func RegisterMock[T any](am *AutoMock, ctor func() T) error {
	return mock.Register(am.factory, ctor)
}

// Mock returns the mock associated with T, resolving it through the
// container's root scope so it is the same instance injected into anything
// resolved there. Unlike [Create], T is not recorded in the root-created set.
func Mock[T any](am *AutoMock) (T, error) {
	return Resolve[T](am.c)
}

// ControllerFor returns the expectation controller of T's mock, creating the
// mock if it does not exist yet:
//
//	ctrl, _ := acorn.ControllerFor[Mailer](am)
//	ctrl.On("Send", mock.Anything).Return(nil)
func ControllerFor[T any](am *AutoMock) (*mock.Mock, error) {
	instance, err := Mock[T](am)
	if err != nil {
		return nil, err
	}
	ctrl, ok := am.factory.Controller(instance)
	if !ok {
		return nil, fmt.Errorf("%s does not embed mock.Mock", typeOf[T]())
	}
	return ctrl, nil
}
