package container

import "fmt"

// Kind tags a Definition as a literal value or a container reference.
type Kind int

const (
	// Literal injects the wrapped value verbatim.
	Literal Kind = iota

	// Reference injects the result of resolving the wrapped key through the
	// Canister at injection time.
	Reference
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Definition is a per-parameter override used while autowiring.
// Definitions are immutable once built.
type Definition struct {
	kind  Kind
	value any
}

// Definitions maps parameter names to their overrides.
type Definitions map[string]Definition

// NewDefinition builds a Definition with an explicit kind. Unknown kinds fall
// back to Literal; known kinds are always preserved.
func NewDefinition(kind Kind, value any) Definition {
	if kind != Literal && kind != Reference {
		kind = Literal
	}
	return Definition{kind: kind, value: value}
}

// Val wraps v so it is injected as-is.
//
//	c.Define("db", container.Definitions{"dsn": container.Val("sqlite::memory:")})
func Val(v any) Definition {
	return NewDefinition(Literal, v)
}

// Ref wraps key so the parameter receives c.Get(key) at injection time.
//
//	c.Define("mailer", container.Definitions{"log": container.Ref("logger")})
func Ref(key string) Definition {
	return NewDefinition(Reference, key)
}

// Kind returns the definition tag.
func (d Definition) Kind() Kind { return d.kind }

// Value returns the wrapped value (the key, for references).
func (d Definition) Value() any { return d.value }

// IsReference reports whether d points at another container key.
func (d Definition) IsReference() bool { return d.kind == Reference }

// Key returns the referenced container key. It is empty for literals and for
// references built around a non-string value.
func (d Definition) Key() string {
	if d.kind != Reference {
		return ""
	}
	s, _ := d.value.(string)
	return s
}

func (d Definition) String() string {
	return fmt.Sprintf("%s(%v)", d.kind, d.value)
}
