package mock

import "reflect"

// Anything matches any single argument in an expectation.
//
//	m.On("Fetch", mock.Anything).Return(nil)
var Anything = anything{}

type anything struct{}

// Matcher wraps a predicate so an expectation can match on argument shape
// rather than exact value.
type Matcher struct {
	fn reflect.Value
}

// MatchedBy returns a Matcher backed by fn, which must be a function of one
// argument returning bool:
//
//	m.On("Save", mock.MatchedBy(func(u *User) bool { return u.ID != 0 }))
//
// MatchedBy panics if fn has any other shape.
func MatchedBy(fn any) Matcher {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 1 || t.Out(0).Kind() != reflect.Bool {
		panic("mock: MatchedBy requires a func(T) bool")
	}
	return Matcher{fn: v}
}

func (m Matcher) matches(arg any) bool {
	argType := m.fn.Type().In(0)
	var v reflect.Value
	if arg == nil {
		// A nil argument can only match nilable parameter types.
		switch argType.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
			reflect.Pointer, reflect.Slice:
			v = reflect.Zero(argType)
		default:
			return false
		}
	} else {
		v = reflect.ValueOf(arg)
		if !v.Type().AssignableTo(argType) {
			return false
		}
	}
	return m.fn.Call([]reflect.Value{v})[0].Bool()
}

// Call is a single expectation on a mock: a method, the arguments it should be
// called with, the values it returns, and how many calls it accounts for.
//
// Calls are created via [Mock.On] and configured fluently:
//
//	m.On("Greet", "bob").Return("hello bob", nil).Once()
type Call struct {
	parent *Mock
	method string
	args   []any
	// returns holds the values handed back for a matching invocation.
	returns []any

	// total is the call budget: 0 means unlimited, n > 0 means the
	// expectation is exhausted after n matching calls.
	total int

	// optional expectations are ignored by verification.
	optional bool

	// count is the number of matching calls observed so far.
	count int
}

// Return sets the values the mock hands back for a matching call, in the
// mocked method's return order.
func (c *Call) Return(values ...any) *Call {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	c.returns = values
	return c
}

// Once limits the expectation to exactly one call.
func (c *Call) Once() *Call { return c.Times(1) }

// Times limits the expectation to exactly n calls. Verification fails unless
// the expectation was matched exactly n times.
func (c *Call) Times(n int) *Call {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	c.total = n
	return c
}

// Maybe marks the expectation as optional: it still answers matching calls,
// but verification does not require it to have been met.
func (c *Call) Maybe() *Call {
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	c.optional = true
	return c
}

// matches reports whether the expectation covers an invocation of method with
// args and still has call budget left. Caller holds the parent's lock.
func (c *Call) matches(method string, args []any) bool {
	if c.method != method || len(c.args) != len(args) {
		return false
	}
	if c.total > 0 && c.count >= c.total {
		return false
	}
	for i, want := range c.args {
		switch w := want.(type) {
		case anything:
			continue
		case Matcher:
			if !w.matches(args[i]) {
				return false
			}
		default:
			if !reflect.DeepEqual(want, args[i]) {
				return false
			}
		}
	}
	return true
}

// required returns the number of calls verification demands.
func (c *Call) required() int {
	if c.optional {
		return 0
	}
	if c.total > 0 {
		return c.total
	}
	return 1
}
