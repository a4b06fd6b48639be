// Package ref provides the resolvable reference value type produced by
// parsing, plus the resolver variants used to fill missing parameters.
package ref

// Resolver supplies a value for a reference parameter that was not given
// explicitly. It is either a literal value or a function evaluated at
// resolution time.
type Resolver struct {
	literal string
	fn      func() (string, error)
}

// Literal returns a resolver that always yields v.
func Literal(v string) Resolver {
	return Resolver{literal: v}
}

// Func returns a resolver that invokes f when a value is needed. An error
// from f means no value is available.
func Func(f func() (string, error)) Resolver {
	return Resolver{fn: f}
}

// Resolve evaluates the resolver.
func (r Resolver) Resolve() (string, error) {
	if r.fn != nil {
		return r.fn()
	}
	return r.literal, nil
}

// IsZero reports whether the resolver carries neither a literal nor a
// function.
func (r Resolver) IsZero() bool {
	return r.fn == nil && r.literal == ""
}
