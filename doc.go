// Package acorn provides a reflection-based dependency injection container
// with automatic mocking of unregistered dependencies.
//
// The container resolves constructor functions the usual way: register
// constructors, instances or named providers, then retrieve fully-assembled
// values with [Resolve] or [ResolveNamed]. What acorn adds is a registration
// source extension point: pluggable resolvers consulted when no explicit
// registration exists for a requested type. The [AutoMock] composition root
// uses it to satisfy unregistered dependencies with auto-created mocks from a
// shared mock factory.
//
// # Quick start
//
//	am := acorn.New()
//	defer am.Close()
//
//	acorn.RegisterMock[Mailer](am, func() Mailer { return &mailerMock{} })
//
//	svc, err := acorn.Create[*SignupService](am)
//
// SignupService is built for real; its unregistered Mailer dependency is a
// mock, retrievable with [Mock] and configurable before or after resolution.
//
// # Lifetimes and scopes
//
// [Singleton] (default) keeps one shared instance for the lifetime of the
// container. [Scoped] keeps one instance per lifetime scope; auto-created
// mocks use this, so a scope sees one mock per type and sibling scopes are
// independent. [Transient] constructs a fresh instance on every resolution.
//
// # Strict and loose mocks
//
// [New] builds a loose facade: unexpected mock calls return zero values.
// [NewStrict] makes every unexpected call fail at call time. Constructing
// with [WithVerifyAll] additionally verifies every created mock's
// expectations when the facade is closed.
package acorn
