package container

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type widget struct{ n int }

type sizer interface{ Size() int }

func TestTypeKey(t *testing.T) {
	pkg := reflect.TypeFor[widget]().PkgPath()

	assert.Equal(t, pkg+".widget", TypeKey(widget{}))
	assert.Equal(t, pkg+".widget", TypeKey(&widget{}))
	assert.Equal(t, pkg+".widget", KeyOf[*widget]())
	assert.Equal(t, pkg+".sizer", KeyOf[sizer]())
	assert.Equal(t, "int", TypeKey(1))
	assert.Equal(t, "[]string", TypeKey([]string{}))
	assert.Empty(t, TypeKey(nil))
}

func TestIsClassLike(t *testing.T) {
	assert.True(t, isClassLike(reflect.TypeFor[widget]()))
	assert.True(t, isClassLike(reflect.TypeFor[*widget]()))
	assert.True(t, isClassLike(reflect.TypeFor[sizer]()))

	assert.False(t, isClassLike(reflect.TypeFor[int]()))
	assert.False(t, isClassLike(reflect.TypeFor[any]()))
	assert.False(t, isClassLike(reflect.TypeFor[struct{}]()))
	assert.False(t, isClassLike(reflect.TypeFor[[]widget]()))
	assert.False(t, isClassLike(reflect.TypeFor[*int]()))
}

func TestFallback(t *testing.T) {
	assert.Equal(t, 0, fallback(reflect.TypeFor[int]()).Interface())
	assert.Equal(t, 0.0, fallback(reflect.TypeFor[float64]()).Interface())
	assert.Equal(t, "", fallback(reflect.TypeFor[string]()).Interface())
	assert.Equal(t, [2]int{}, fallback(reflect.TypeFor[[2]int]()).Interface())

	s := fallback(reflect.TypeFor[[]string]()).Interface().([]string)
	assert.NotNil(t, s)
	assert.Empty(t, s)

	m := fallback(reflect.TypeFor[map[string]int]()).Interface().(map[string]int)
	assert.NotNil(t, m)

	fn := fallback(reflect.TypeFor[func(int) (string, error)]()).Interface().(func(int) (string, error))
	out, err := fn(3)
	assert.Empty(t, out)
	assert.NoError(t, err)
}

func TestCoerce(t *testing.T) {
	intType := reflect.TypeFor[int]()

	v, ok := coerce(nil, intType)
	assert.True(t, ok)
	assert.Equal(t, 0, v.Interface())

	v, ok = coerce(int64(5), intType)
	assert.True(t, ok)
	assert.Equal(t, 5, v.Interface())

	w := &widget{n: 2}
	v, ok = coerce(w, reflect.TypeFor[widget]())
	assert.True(t, ok)
	assert.Equal(t, widget{n: 2}, v.Interface())

	_, ok = coerce("5", intType)
	assert.False(t, ok)

	_, ok = coerce(5, reflect.TypeFor[string]())
	assert.False(t, ok)
}
