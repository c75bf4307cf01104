package mock

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNilType is returned when a nil type token is passed to the factory.
	ErrNilType = errors.New("mock: nil type")

	// ErrNilConstructor is returned when a nil constructor is registered.
	ErrNilConstructor = errors.New("mock: nil constructor")

	// ErrCannotCreate is returned when the factory has no way to fabricate the
	// requested type: an interface with no registered constructor, or a kind
	// the factory does not support.
	ErrCannotCreate = errors.New("mock: cannot create mock for type")
)

// UnexpectedCallError is the panic value raised when a strict mock receives a
// call with no matching expectation.
type UnexpectedCallError struct {
	// Mock is the name the factory stamped on the mock, usually the mocked
	// type's string form.
	Mock string

	// Method is the method that was called.
	Method string

	// Args are the arguments the method was called with.
	Args []any
}

// Error implements the error interface.
func (e *UnexpectedCallError) Error() string {
	var sb strings.Builder
	sb.WriteString("mock: unexpected call to ")
	sb.WriteString(e.Mock)
	sb.WriteString(".")
	sb.WriteString(e.Method)
	sb.WriteString(" with ")
	sb.WriteString(strconv.Itoa(len(e.Args)))
	sb.WriteString(" argument(s); no matching expectation")
	return sb.String()
}

// UnmetExpectationError reports a single expectation that was not satisfied
// when the owning mock was verified.
type UnmetExpectationError struct {
	Mock     string
	Method   string
	Required int
	Actual   int
}

// Error implements the error interface.
func (e *UnmetExpectationError) Error() string {
	return "mock: expectation " + e.Mock + "." + e.Method +
		" required " + strconv.Itoa(e.Required) + " call(s), got " +
		strconv.Itoa(e.Actual)
}
