package acorn

import (
	"errors"
	"testing"

	"github.com/ARTM2000/acorn/mock"
)

// Shared test types and constructors used across test files.

// mustRegister calls t.Fatal if constructor registration fails.
func mustRegister(t *testing.T, c Container, ctor any, opts ...RegisterOption) {
	t.Helper()
	if err := c.RegisterConstructor(ctor, opts...); err != nil {
		t.Fatalf("RegisterConstructor: %v", err)
	}
}

// mustRegisterNamed calls t.Fatal if named registration fails.
func mustRegisterNamed(t *testing.T, c Container, name string, ctor any, opts ...RegisterOption) {
	t.Helper()
	if err := c.RegisterNamed(name, ctor, opts...); err != nil {
		t.Fatalf("RegisterNamed(%q): %v", name, err)
	}
}

type testLogger struct{ Prefix string }
type testConfig struct{ DSN string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testUserRepo struct {
	DB     *testDatabase
	Logger *testLogger
}

type testService interface {
	Name() string
}

type testUserService struct {
	Repo   *testUserRepo
	Logger *testLogger
}

func (s *testUserService) Name() string { return "user" }

type testOrderService struct{ Logger *testLogger }

func (s *testOrderService) Name() string { return "order" }

type testCircA struct{ B *testCircB }
type testCircB struct{ C *testCircC }
type testCircC struct{ A *testCircA }

func newTestLogger() *testLogger           { return &testLogger{Prefix: "app"} }
func newTestConfig() *testConfig           { return &testConfig{DSN: "postgres://localhost"} }
func newTestCircA(b *testCircB) *testCircA { return &testCircA{B: b} }
func newTestCircB(c *testCircC) *testCircB { return &testCircB{C: c} }
func newTestCircC(a *testCircA) *testCircC { return &testCircC{A: a} }

func newTestDatabase(cfg *testConfig, log *testLogger) *testDatabase {
	return &testDatabase{Config: cfg, Logger: log}
}

func newTestUserRepo(db *testDatabase, log *testLogger) *testUserRepo {
	return &testUserRepo{DB: db, Logger: log}
}

func newTestUserService(repo *testUserRepo, log *testLogger) *testUserService {
	return &testUserService{Repo: repo, Logger: log}
}

func newTestOrderService(log *testLogger) *testOrderService {
	return &testOrderService{Logger: log}
}

// testHandler fixtures exercise slice multi-binding.
type testHandler interface {
	Handle() string
}

type testEmailHandler struct{ ID int }

func (h *testEmailHandler) Handle() string { return "email" }

type testSMSHandler struct{}

func (h *testSMSHandler) Handle() string { return "sms" }

// testHandlerHub aggregates the registered handlers without being one itself.
type testHandlerHub struct {
	Handlers []testHandler
}

// testBroadcastHandler is both a handler and a consumer of the handler
// collection, so resolving it routes a dependency cycle through the slice.
type testBroadcastHandler struct {
	Children []testHandler
}

func (h *testBroadcastHandler) Handle() string { return "broadcast" }

// testClosable implements io.Closer for shutdown tests.
type testClosable struct {
	Name   string
	Closed bool
	Order  *[]string // shared slice to record close order
}

func (c *testClosable) Close() error {
	c.Closed = true
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	return nil
}

// testFailCloser implements io.Closer but returns an error.
type testFailCloser struct{}

func (f *testFailCloser) Close() error {
	return errors.New("close failed")
}

// testStarter implements Startable and counts starts.
type testStarter struct{ Started int }

func (s *testStarter) Start() error {
	s.Started++
	return nil
}

// testFailStarter implements Startable but refuses to start.
type testFailStarter struct{}

func (s *testFailStarter) Start() error { return errors.New("start failed") }

// ---------------------------------------------------------------------------
// Mocking fixtures
// ---------------------------------------------------------------------------

type testMailer interface {
	Send(to, body string) error
}

type mailerMock struct{ mock.Mock }

func (m *mailerMock) Send(to, body string) error {
	return m.Called(to, body).Error(0)
}

func newMailerMock() testMailer { return &mailerMock{} }

type testGreeter interface {
	Greet(name string) (string, error)
}

type greeterMock struct{ mock.Mock }

func (m *greeterMock) Greet(name string) (string, error) {
	res := m.Called(name)
	return res.String(0), res.Error(1)
}

func newGreeterMock() testGreeter { return &greeterMock{} }

// testLifecycle is an interface whose method set includes Startable, so it
// must never be auto-mocked.
type testLifecycle interface {
	Start() error
	Ping() bool
}

// testSignup is a typical subject under test: a concrete type with interface
// dependencies.
type testSignup struct {
	Mailer  testMailer
	Greeter testGreeter
}

func (s *testSignup) Welcome(name string) error {
	greeting, err := s.Greeter.Greet(name)
	if err != nil {
		return err
	}
	return s.Mailer.Send(name, greeting)
}

// testVault keeps its dependency unexported; binding it requires the unsafe
// binder.
type testVault struct {
	mailer testMailer
}

func (v *testVault) Mailer() testMailer { return v.mailer }
