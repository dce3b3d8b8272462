package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineSetConfigInstallsBuiltinCommandsAndRules(t *testing.T) {
	e := New()
	e.SetConfig(Plugin())
	RegisterBuiltins(e)
	_, ok := e.commands.Lookup("concat")
	assert.True(t, ok)
	assert.NotEmpty(t, e.rules.Iter(CategoryParse))
	assert.NotEmpty(t, e.rules.Iter(CategoryMath))
}

func TestEngineParseArithmeticAndAssignment(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Parse("1+2 >> sum", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), v.Int())
	assert.Equal(t, int64(3), scope.GetVar([]string{"sum"}, Undefined()).Int())
}

func TestEngineParsePipeThreadsContext(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Parse(`concat -a --args 1 2 | concat -a --args $context 3`, scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, "1,2,3", v.Str())
}

func TestEngineParseSequenceReturnsLastDefinedValue(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Parse("1;2;3", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), v.Int())
}

func TestEngineParseOrAndAndShortCircuit(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()

	v, err := e.Parse("0||5", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())

	v, err = e.Parse("1&&0", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), v.Int())
}

func TestEngineParseNullishFallsThroughNullAndUndefinedOnly(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Parse("null??0??9", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), v.Int())
}

func TestEngineGetVarAndSetVarRoundTripThroughGlobalStore(t *testing.T) {
	e := newTestEngine()
	e.SetVar("greeting", Str("hi"))
	assert.Equal(t, "hi", e.GetVar("greeting", nil).Str())

	scope := e.NewScope()
	assert.Equal(t, "hi", e.GetVar("greeting", scope).Str())
}

func TestEngineParseAsyncMatchesSyncResult(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	d := e.ParseAsync("2*3", scope, Undefined())
	v, err := d.Await()
	assert.NoError(t, err)
	assert.Equal(t, int64(6), v.Int())
}

func TestEngineParseArrayLiteralAndObjectLiteral(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()

	v, err := e.Parse("[1,2,3]", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, 3, len(v.Seq()))

	v, err = e.Parse("{a:1,b:2}", scope, Undefined())
	assert.NoError(t, err)
	a, _ := v.Map().Get("a")
	assert.Equal(t, int64(1), a.Int())
}

func TestEngineRegisterCommandAddsSingleCommandWithoutFullConfig(t *testing.T) {
	e := New()
	e.SetConfig(Plugin())
	e.RegisterCommand(&Command{
		Name: "double",
		Positional: []PositionalArg{
			{Name: "n", Required: true},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			n := bound["n"]
			return Int(n.Int() * 2), nil
		},
	})
	scope := e.NewScope()
	v, err := e.Parse("double 21", scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())
}
