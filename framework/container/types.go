package container

import "reflect"

// TypeKey returns the package-qualified type name of v, the key under which
// constructible types are provided, instances are stored and class-typed
// parameters are autowired. One level of pointer is stripped, so *Foo and
// Foo share a key.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "example.com/app.UserRepository"
//	c.Alias(key, container.TypeKey(&SQLRepository{}))
func TypeKey(v any) string {
	if v == nil {
		return ""
	}
	return typeKeyOf(reflect.TypeOf(v))
}

// KeyOf is the generic form of TypeKey.
//
//	c.Alias(container.KeyOf[Cache](), container.KeyOf[*RedisCache]())
func KeyOf[T any]() string {
	return typeKeyOf(reflect.TypeFor[T]())
}

func typeKeyOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t.Name() == "":
		return t.String()
	case t.PkgPath() == "":
		return t.Name()
	default:
		return t.PkgPath() + "." + t.Name()
	}
}

// isClassLike reports whether a parameter of type t is autowired by type:
// named structs, pointers to named types and named non-empty interfaces.
func isClassLike(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer:
		e := t.Elem()
		return e.Name() != "" && e.PkgPath() != ""
	case reflect.Struct:
		return t.Name() != "" && t.PkgPath() != ""
	case reflect.Interface:
		return t.Name() != "" && t.NumMethod() > 0
	default:
		return false
	}
}

// isUntyped reports whether t accepts anything (any / interface{}).
func isUntyped(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// fallback returns the type-based default for a parameter nothing else
// could satisfy.
func fallback(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Func:
		return reflect.MakeFunc(t, func([]reflect.Value) []reflect.Value {
			out := make([]reflect.Value, t.NumOut())
			for i := range out {
				out[i] = reflect.Zero(t.Out(i))
			}
			return out
		})
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	case reflect.Map:
		return reflect.MakeMap(t)
	default:
		// ints are 0, floats 0.0, strings "", arrays and everything else zero
		return reflect.Zero(t)
	}
}

// coerce fits v into a parameter of type t. nil becomes the zero value,
// pointers are dereferenced when the element fits, and numeric values are
// converted between numeric kinds.
func coerce(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		return reflect.Zero(t), true
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()

	switch {
	case rt.AssignableTo(t):
		return rv, true
	case rt.Kind() == reflect.Pointer && !rv.IsNil() && rt.Elem().AssignableTo(t):
		return rv.Elem(), true
	case isNumeric(rt.Kind()) && isNumeric(t.Kind()) && rt.ConvertibleTo(t):
		return rv.Convert(t), true
	default:
		return reflect.Value{}, false
	}
}
