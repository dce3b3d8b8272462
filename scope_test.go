package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeGetVarPrefersLocalOverGlobal(t *testing.T) {
	store := NewStore()
	store.Set("x", Int(1))
	scope := NewScope(store)
	scope.setLocal("x", Int(2))
	assert.Equal(t, int64(2), scope.GetVar([]string{"x"}, Undefined()).Int())
}

func TestScopeGetVarFallsBackToGlobalThenDefault(t *testing.T) {
	store := NewStore()
	store.Set("x", Int(9))
	scope := NewScope(store)
	assert.Equal(t, int64(9), scope.GetVar([]string{"x"}, Undefined()).Int())
	assert.True(t, scope.GetVar([]string{"missing"}, Undefined()).IsUndefined())
}

func TestScopeGetVarDottedPathShortCircuitsOnNull(t *testing.T) {
	scope := NewScope(nil)
	m := NewOrderedMap()
	m.Set("foo", Null())
	scope.setLocal("a", MapOf(m))
	def := Str("fallback")
	assert.Equal(t, "fallback", scope.GetVar([]string{"a", "foo", "bar"}, def).Str())
}

func TestScopeGetVarChainsThroughDeferred(t *testing.T) {
	scope := NewScope(nil)
	inner := NewOrderedMap()
	inner.Set("baz", Int(5))
	outer := NewOrderedMap()
	outer.Set("bar", MapOf(inner))
	d := NewDeferred()
	scope.setLocal("a", DeferredValue(d))
	scope.setLocal("foo", MapOf(outer))

	result := scope.GetVar([]string{"a", "bar", "baz"}, Undefined())
	assert.True(t, result.IsDeferred())

	d.Resolve(MapOf(outer))
	v, err := result.Deferred().Await()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}

func TestScopeSetVarCreatesMissingIntermediateAsMap(t *testing.T) {
	scope := NewScope(nil)
	err := scope.SetVar([]string{"var1", "foo", "bar", "baz", "4"}, Int(4))
	assert.NoError(t, err)
	v := scope.GetVar([]string{"var1", "foo", "bar", "baz", "4"}, Undefined())
	assert.Equal(t, int64(4), v.Int())
}

func TestScopeSetVarRejectsDeferredIntermediate(t *testing.T) {
	scope := NewScope(nil)
	scope.setLocal("a", DeferredValue(NewDeferred()))
	err := scope.SetVar([]string{"a", "b"}, Int(1))
	var mismatch *PropertyTypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestIsVariableAndIsRunnableVariable(t *testing.T) {
	assert.True(t, isVariable("$x"))
	assert.False(t, isVariable("x"))
	assert.True(t, isRunnableVariable("$$x"))
	assert.False(t, isRunnableVariable("$x"))
}
