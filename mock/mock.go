package mock

import (
	"errors"
	"runtime"
	"strings"
	"sync"
)

// Mock is the embeddable core of a mock implementation. A mock type embeds
// Mock and forwards each method to Called:
//
//	type greeterMock struct{ mock.Mock }
//
//	func (m *greeterMock) Greet(name string) (string, error) {
//		res := m.Called(name)
//		return res.String(0), res.Error(1)
//	}
//
// Whether a call with no matching expectation fails (strict) or yields zero
// values (loose) is decided by the [Factory] that created the mock.
type Mock struct {
	mu sync.Mutex

	// name identifies the mock in failures, stamped by the owning factory.
	name string

	strict   bool
	expected []*Call
	calls    []Record
}

// Record is one observed invocation.
type Record struct {
	Method string
	Args   []any
}

// mocked is how the factory reaches the embedded core of a created instance.
// The method is promoted from the embedded Mock, so any value embedding Mock
// satisfies it.
type mocked interface {
	mockCore() *Mock
}

func (m *Mock) mockCore() *Mock { return m }

// adopt stamps factory-owned state onto the core.
func (m *Mock) adopt(name string, strict bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	m.strict = strict
}

// Name returns the identifier the factory stamped on the mock.
func (m *Mock) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// On registers an expectation for method with the given argument matchers.
// Arguments are matched by deep equality unless [Anything] or a [MatchedBy]
// matcher is supplied.
func (m *Mock) On(method string, args ...any) *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &Call{parent: m, method: method, args: args}
	m.expected = append(m.expected, c)
	return c
}

// Called dispatches the calling method's invocation against the registered
// expectations. The method name is derived from the caller, so it must be
// invoked directly from the mocked method.
func (m *Mock) Called(args ...any) Results {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		panic("mock: Called outside of a method")
	}
	name := runtime.FuncForPC(pc).Name()
	// Trim the package path and receiver, plus the -fm suffix present on
	// method values.
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return m.MethodCalled(name, args...)
}

// MethodCalled is the explicit-name form of [Called].
//
// In strict mode a call with no matching expectation panics with an
// [UnexpectedCallError]; in loose mode it returns zero-value Results.
func (m *Mock) MethodCalled(method string, args ...any) Results {
	m.mu.Lock()
	m.calls = append(m.calls, Record{Method: method, Args: args})

	for _, c := range m.expected {
		if c.matches(method, args) {
			c.count++
			res := Results{values: c.returns}
			m.mu.Unlock()
			return res
		}
	}

	strict, name := m.strict, m.name
	m.mu.Unlock()

	if strict {
		panic(&UnexpectedCallError{Mock: name, Method: method, Args: args})
	}
	return Results{}
}

// Calls returns a copy of every invocation observed so far.
func (m *Mock) Calls() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was invoked, matched or not.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.calls {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Verify checks every non-optional expectation and returns a joined error for
// each one that was not met.
func (m *Mock) Verify() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, c := range m.expected {
		req := c.required()
		if c.count < req {
			errs = append(errs, &UnmetExpectationError{
				Mock:     m.name,
				Method:   c.method,
				Required: req,
				Actual:   c.count,
			})
		}
	}
	return errors.Join(errs...)
}

// Results holds the configured return values for a matched call. Accessors
// return the zero value for positions that were never configured, which is
// what loose mode relies on.
type Results struct {
	values []any
}

// Len returns the number of configured values.
func (r Results) Len() int { return len(r.values) }

// Get returns the value at index i, or nil if none was configured.
func (r Results) Get(i int) any {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// Error returns the value at index i as an error.
func (r Results) Error(i int) error {
	v := r.Get(i)
	if v == nil {
		return nil
	}
	return v.(error)
}

// String returns the value at index i as a string.
func (r Results) String(i int) string {
	v := r.Get(i)
	if v == nil {
		return ""
	}
	return v.(string)
}

// Int returns the value at index i as an int.
func (r Results) Int(i int) int {
	v := r.Get(i)
	if v == nil {
		return 0
	}
	return v.(int)
}

// Bool returns the value at index i as a bool.
func (r Results) Bool(i int) bool {
	v := r.Get(i)
	if v == nil {
		return false
	}
	return v.(bool)
}
