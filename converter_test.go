package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEngine() *Engine {
	e := New()
	e.SetConfig(Plugin())
	RegisterBuiltins(e)
	return e
}

func TestConvertKeywordsAndLiterals(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()

	v, err := e.Convert("null", scope)
	assert.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = e.Convert("true", scope)
	assert.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = e.Convert("42", scope)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())
}

func TestConvertFlagPassesThroughAsString(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Convert("-abc", scope)
	assert.NoError(t, err)
	assert.Equal(t, KindString, v.Kind())
	assert.Equal(t, "-abc", v.Str())
}

func TestConvertVariablePath(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	m := NewOrderedMap()
	m.Set("bar", Int(7))
	scope.setLocal("foo", MapOf(m))
	v, err := e.Convert("$foo.bar", scope)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), v.Int())
}

func TestConvertArrayLiteral(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Convert("[1,2,3]", scope)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(v.Seq()))
}

func TestConvertObjectLiteralWithMixedKeyedAndKeylessItems(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Convert("{k:1,2}", scope)
	assert.NoError(t, err)
	a, ok := v.Map().Get("k")
	assert.True(t, ok)
	assert.Equal(t, int64(1), a.Int())
	b, ok := v.Map().Get("0")
	assert.True(t, ok)
	assert.Equal(t, int64(2), b.Int())
}

func TestConvertMathExpression(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Convert("1+2", scope)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), v.Int())
}
