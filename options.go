package acorn

import "go.uber.org/zap"

// settings collects the configuration shared by [NewContainer] and the
// AutoMock constructors. Not every option applies to both; WithVerifyAll is
// meaningful only for the facade.
type settings struct {
	logger    *zap.Logger
	binder    Binder
	sources   []RegistrationSource
	verifyAll bool
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger: zap.NewNop(),
		binder: ExportedFieldBinder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a container or an AutoMock facade.
type Option func(*settings)

// WithLogger sets the logger resolution and registration events are emitted
// to, at debug level. The default is a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBinder sets the [Binder] used when autowiring concrete struct types.
// The default [ExportedFieldBinder] refuses unexported dependency fields;
// pass [UnsafeFieldBinder] to bind them too.
func WithBinder(b Binder) Option {
	return func(s *settings) {
		if b != nil {
			s.binder = b
		}
	}
}

// WithSource appends a registration source at construction time.
func WithSource(src RegistrationSource) Option {
	return func(s *settings) {
		if src != nil {
			s.sources = append(s.sources, src)
		}
	}
}

// WithVerifyAll makes an AutoMock facade verify every mock it ever created
// when it is closed. Ignored by [NewContainer].
func WithVerifyAll() Option {
	return func(s *settings) {
		s.verifyAll = true
	}
}
