package acorn

// Lifetime controls how many instances of a registration the container
// creates.
type Lifetime int

const (
	// Singleton is the default lifetime. The first resolution constructs the
	// instance and every later resolution, from any scope, reuses it.
	Singleton Lifetime = iota

	// Scoped means one instance per lifetime scope: repeated resolutions
	// within one scope return the same instance, sibling scopes get
	// independent ones.
	Scoped

	// Transient means a new instance is constructed on every resolution.
	Transient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}
