// Package mock is a small interaction-mocking engine with factory-level
// strictness control.
//
// A mock type embeds [Mock] and forwards each method to [Mock.Called]; tests
// configure behavior with [Mock.On] and friends. A [Factory] fabricates mock
// instances from runtime type tokens, remembers every instance it created,
// and can verify all of their expectations at once.
//
// # Strict and loose mode
//
// The factory's [Mode] decides what a call with no matching expectation does:
// in [Strict] mode the mock panics with an [UnexpectedCallError] at call time;
// in [Loose] mode the call is answered with zero values and recorded.
package mock
