package acorn

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// RegisterConstructor
// ---------------------------------------------------------------------------

func TestRegisterConstructor(t *testing.T) {
	t.Run("valid constructor", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterConstructor(newTestLogger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("constructor returning (T, error)", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterConstructor(func() (*testConfig, error) { return &testConfig{}, nil })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-function is rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterConstructor("not a function"); !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("no return values rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterConstructor(func() {}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("three return values rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterConstructor(func() (int, int, int) { return 0, 0, 0 }); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("second return not error rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterConstructor(func() (int, string) { return 0, "" }); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("same type registered twice: last wins", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, newTestLogger)
		mustRegister(t, c, func() *testLogger { return &testLogger{Prefix: "override"} })

		logger, err := Resolve[*testLogger](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.Prefix != "override" {
			t.Fatalf("expected override registration to win, got %q", logger.Prefix)
		}
	})

	t.Run("with lifetime option", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterConstructor(newTestLogger, WithLifetime(Transient)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("For binds an interface type", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterConstructor(
			func() *testUserService { return &testUserService{} },
			For(reflect.TypeOf((*testService)(nil)).Elem()),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		svc, err := Resolve[testService](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.Name() != "user" {
			t.Fatalf("expected 'user', got %q", svc.Name())
		}
	})

	t.Run("For with incompatible type rejected", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterConstructor(newTestLogger, As[testService]())
		if !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("after close returns ErrContainerClosed", func(t *testing.T) {
		c := NewContainer()
		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := c.RegisterConstructor(newTestLogger); !errors.Is(err, ErrContainerClosed) {
			t.Fatalf("expected ErrContainerClosed, got: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// RegisterInstance
// ---------------------------------------------------------------------------

func TestRegisterInstance(t *testing.T) {
	t.Run("bound to concrete type", func(t *testing.T) {
		c := NewContainer()
		logger := &testLogger{Prefix: "mine"}
		if err := c.RegisterInstance(logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := Resolve[*testLogger](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != logger {
			t.Fatal("expected the exact provided instance")
		}
	})

	t.Run("bound to interface via As", func(t *testing.T) {
		c := NewContainer()
		svc := &testUserService{}
		if err := c.RegisterInstance(svc, As[testService]()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := Resolve[testService](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != testService(svc) {
			t.Fatal("expected the exact provided instance")
		}
	})

	t.Run("nil instance rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterInstance(nil); !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("incompatible As rejected", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterInstance(&testLogger{}, As[testService]())
		if !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("provided instance is not closed by the container", func(t *testing.T) {
		c := NewContainer()
		closable := &testClosable{Name: "provided"}
		if err := c.RegisterInstance(closable); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := Resolve[*testClosable](c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if closable.Closed {
			t.Fatal("container must not close caller-provided instances")
		}
	})
}

// ---------------------------------------------------------------------------
// Register: raw registrations
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	t.Run("nil registration rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.Register(nil); !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("no construction form rejected", func(t *testing.T) {
		c := NewContainer()
		err := c.Register(&Registration{Type: reflect.TypeOf((*testLogger)(nil))})
		if !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("two construction forms rejected", func(t *testing.T) {
		c := NewContainer()
		err := c.Register(&Registration{
			Constructor: newTestLogger,
			Instance:    &testLogger{},
		})
		if !errors.Is(err, ErrInvalidRegistration) {
			t.Fatalf("expected ErrInvalidRegistration, got: %v", err)
		}
	})

	t.Run("factory requires explicit type", func(t *testing.T) {
		c := NewContainer()
		err := c.Register(&Registration{
			Factory: func(*Resolution) (any, error) { return &testLogger{}, nil },
		})
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("factory registration resolves", func(t *testing.T) {
		c := NewContainer()
		err := c.Register(&Registration{
			Type:     reflect.TypeOf((*testLogger)(nil)),
			Lifetime: Transient,
			Factory: func(*Resolution) (any, error) {
				return &testLogger{Prefix: "factory"}, nil
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		logger, err := Resolve[*testLogger](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.Prefix != "factory" {
			t.Fatalf("expected 'factory', got %q", logger.Prefix)
		}
	})
}

// ---------------------------------------------------------------------------
// RegisterNamed
// ---------------------------------------------------------------------------

func TestRegisterNamed(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterNamed("log", newTestLogger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterNamed("", newTestLogger); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("same name registered twice: last wins", func(t *testing.T) {
		c := NewContainer()
		mustRegisterNamed(t, c, "log", newTestLogger)
		mustRegisterNamed(t, c, "log", func() *testLogger { return &testLogger{Prefix: "special"} })

		logger, err := ResolveNamed[*testLogger](c, "log")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.Prefix != "special" {
			t.Fatalf("expected 'special', got %q", logger.Prefix)
		}
	})

	t.Run("same type can be named and typed", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, newTestLogger)
		err := c.RegisterNamed("special", func() *testLogger { return &testLogger{Prefix: "special"} })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// ResolveAll
// ---------------------------------------------------------------------------

func TestResolveAll(t *testing.T) {
	t.Run("collects assignable registrations in order", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, newTestLogger)
		mustRegister(t, c, func() *testUserService { return &testUserService{} })
		mustRegister(t, c, func() *testOrderService { return &testOrderService{} })

		services, err := ResolveAll[testService](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(services) != 2 {
			t.Fatalf("expected 2 services, got %d", len(services))
		}
		if services[0].Name() != "user" || services[1].Name() != "order" {
			t.Fatalf("unexpected order: %s, %s", services[0].Name(), services[1].Name())
		}
	})

	t.Run("empty result for unknown interface", func(t *testing.T) {
		c := NewContainer()
		services, err := ResolveAll[testService](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(services) != 0 {
			t.Fatalf("expected no services, got %d", len(services))
		}
	})

	t.Run("resolving a slice type has multi-binding semantics", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, func() *testUserService { return &testUserService{} })
		mustRegister(t, c, func() *testOrderService { return &testOrderService{} })

		services, err := Resolve[[]testService](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(services) != 2 {
			t.Fatalf("expected 2 services, got %d", len(services))
		}
	})

	t.Run("aggregator constructor receives every handler", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, func() *testEmailHandler { return &testEmailHandler{} })
		mustRegister(t, c, func() *testSMSHandler { return &testSMSHandler{} })
		mustRegister(t, c, func(hs []testHandler) *testHandlerHub {
			return &testHandlerHub{Handlers: hs}
		})

		hub, err := Resolve[*testHandlerHub](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hub.Handlers) != 2 {
			t.Fatalf("expected 2 handlers, got %d", len(hub.Handlers))
		}
		if hub.Handlers[0].Handle() != "email" || hub.Handlers[1].Handle() != "sms" {
			t.Fatalf("unexpected handlers: %s, %s", hub.Handlers[0].Handle(), hub.Handlers[1].Handle())
		}
	})

	t.Run("cycle through a slice dependency is detected", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, func(children []testHandler) *testBroadcastHandler {
			return &testBroadcastHandler{Children: children}
		})

		_, err := Resolve[*testBroadcastHandler](c)
		if !errors.Is(err, ErrCircularDependency) {
			t.Fatalf("expected ErrCircularDependency, got: %v", err)
		}
	})

	t.Run("cycle through a directly resolved slice is detected", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, func(children []testHandler) *testBroadcastHandler {
			return &testBroadcastHandler{Children: children}
		})

		_, err := Resolve[[]testHandler](c)
		if !errors.Is(err, ErrCircularDependency) {
			t.Fatalf("expected ErrCircularDependency, got: %v", err)
		}
	})

	t.Run("explicit slice registration wins over multi-binding", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, func() *testUserService { return &testUserService{} })
		mustRegister(t, c, func() []testService { return nil })

		services, err := Resolve[[]testService](c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if services != nil {
			t.Fatalf("expected the registered nil slice, got %v", services)
		}
	})
}

// ---------------------------------------------------------------------------
// Close
// ---------------------------------------------------------------------------

func TestClose(t *testing.T) {
	t.Run("closes singletons in reverse creation order", func(t *testing.T) {
		var order []string
		c := NewContainer()
		mustRegister(t, c, func() *testClosable {
			return &testClosable{Name: "db", Order: &order}
		})
		mustRegister(t, c, func(db *testClosable) *testUserRepo {
			return &testUserRepo{}
		})

		if _, err := Resolve[*testUserRepo](c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if len(order) != 1 || order[0] != "db" {
			t.Fatalf("unexpected close order: %v", order)
		}
	})

	t.Run("second close returns ErrContainerClosed", func(t *testing.T) {
		c := NewContainer()
		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := c.Close(context.Background()); !errors.Is(err, ErrContainerClosed) {
			t.Fatalf("expected ErrContainerClosed, got: %v", err)
		}
	})

	t.Run("close error is reported", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, func() *testFailCloser { return &testFailCloser{} })
		if _, err := Resolve[*testFailCloser](c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := c.Close(context.Background()); err == nil {
			t.Fatal("expected close error")
		}
	})

	t.Run("expired context skips remaining closers", func(t *testing.T) {
		var order []string
		c := NewContainer()
		mustRegister(t, c, func() *testClosable {
			return &testClosable{Name: "only", Order: &order}
		})
		if _, err := Resolve[*testClosable](c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := c.Close(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got: %v", err)
		}
		if len(order) != 0 {
			t.Fatalf("closer should have been skipped, got: %v", order)
		}
	})

	t.Run("resolve after close fails", func(t *testing.T) {
		c := NewContainer()
		mustRegister(t, c, newTestLogger)
		if err := c.Close(context.Background()); err != nil {
			t.Fatalf("Close: %v", err)
		}

		if _, err := Resolve[*testLogger](c); !errors.Is(err, ErrContainerClosed) {
			t.Fatalf("expected ErrContainerClosed, got: %v", err)
		}
	})
}
