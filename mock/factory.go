package mock

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Mode selects how mocks created by a [Factory] treat calls with no matching
// expectation.
type Mode int

const (
	// Loose mocks answer unexpected calls with zero values.
	Loose Mode = iota

	// Strict mocks panic with an [UnexpectedCallError] on unexpected calls.
	Strict
)

// String returns the human-readable name of the mode.
func (m Mode) String() string {
	switch m {
	case Loose:
		return "loose"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// Factory fabricates mock instances from runtime type tokens and keeps the
// bookkeeping needed to retrieve and verify them later.
//
// Interface types are created through constructors registered with
// [Factory.RegisterConstructor] or the generic [Register] helper; the
// constructed value must embed [Mock]. Pointer-to-struct types are fabricated
// as plain zero-value stubs.
type Factory struct {
	mu    sync.RWMutex
	mode  Mode
	ctors map[reflect.Type]func() any

	// byType remembers the first instance fabricated per type so MockFor can
	// hand the same proxy back on every call.
	byType map[reflect.Type]any

	// created lists every core ever fabricated, in order, for VerifyAll.
	created []*Mock
}

// NewFactory creates an empty factory producing mocks in the given mode.
func NewFactory(mode Mode) *Factory {
	return &Factory{
		mode:   mode,
		ctors:  make(map[reflect.Type]func() any),
		byType: make(map[reflect.Type]any),
	}
}

// Mode returns the factory's strictness mode.
func (f *Factory) Mode() Mode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mode
}

// RegisterConstructor binds a constructor to a type token. The constructor's
// product must implement the type and embed [Mock]. Registering the same type
// again replaces the previous constructor.
func (f *Factory) RegisterConstructor(t reflect.Type, ctor func() any) error {
	if t == nil {
		return ErrNilType
	}
	if ctor == nil {
		return fmt.Errorf("%w: %s", ErrNilConstructor, t)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[t] = ctor
	return nil
}

// Register binds a constructor for T, typically an interface:
//
//	mock.Register[Greeter](f, func() Greeter { return &greeterMock{} })
func Register[T any](f *Factory, ctor func() T) error {
	if ctor == nil {
		return fmt.Errorf("%w: %s", ErrNilConstructor, typeToken[T]())
	}
	return f.RegisterConstructor(typeToken[T](), func() any { return ctor() })
}

// CanCreate reports whether the factory is able to fabricate the given type:
// a type with a registered constructor, or a pointer to a struct (fabricated
// as a zero-value stub).
func (f *Factory) CanCreate(t reflect.Type) bool {
	if t == nil {
		return false
	}
	f.mu.RLock()
	_, registered := f.ctors[t]
	f.mu.RUnlock()
	if registered {
		return true
	}
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}

// Create fabricates a new instance for the type token and records it. Every
// call produces a fresh instance; use [Factory.MockFor] for retrieve-or-create
// semantics.
func (f *Factory) Create(t reflect.Type) (any, error) {
	if t == nil {
		return nil, ErrNilType
	}

	f.mu.RLock()
	ctor, registered := f.ctors[t]
	mode := f.mode
	f.mu.RUnlock()

	var instance any
	switch {
	case registered:
		instance = ctor()
		if instance == nil {
			return nil, fmt.Errorf("mock: constructor for %s returned nil", t)
		}
		core, ok := instance.(mocked)
		if !ok {
			return nil, fmt.Errorf("mock: constructor product for %s does not embed mock.Mock", t)
		}
		core.mockCore().adopt(t.String(), mode == Strict)
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		instance = reflect.New(t.Elem()).Interface()
		if core, ok := instance.(mocked); ok {
			core.mockCore().adopt(t.String(), mode == Strict)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrCannotCreate, t)
	}

	f.mu.Lock()
	if _, exists := f.byType[t]; !exists {
		f.byType[t] = instance
	}
	if core, ok := instance.(mocked); ok {
		f.created = append(f.created, core.mockCore())
	}
	f.mu.Unlock()

	return instance, nil
}

// MockFor returns the instance previously fabricated for the type token,
// creating one if none exists yet. This is the entry point for configuring
// expectations before or after resolution.
func (f *Factory) MockFor(t reflect.Type) (any, error) {
	if t == nil {
		return nil, ErrNilType
	}
	f.mu.RLock()
	instance, ok := f.byType[t]
	f.mu.RUnlock()
	if ok {
		return instance, nil
	}
	return f.Create(t)
}

// Controller returns the embedded [Mock] core of an instance fabricated by
// any factory, or false if the value does not embed one.
func (f *Factory) Controller(instance any) (*Mock, bool) {
	core, ok := instance.(mocked)
	if !ok {
		return nil, false
	}
	return core.mockCore(), true
}

// VerifyAll verifies every mock the factory ever created and returns the
// joined failures, or nil when all expectations were met.
func (f *Factory) VerifyAll() error {
	f.mu.RLock()
	cores := make([]*Mock, len(f.created))
	copy(cores, f.created)
	f.mu.RUnlock()

	var errs []error
	for _, m := range cores {
		if err := m.Verify(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// typeToken returns the reflect.Type of T itself, interface types included.
func typeToken[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
