package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchConcatWithShortFlagsAndLongOptions(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	v, err := e.Parse(`concat -ab -c -D --args 1 2 3 --delim "|"`, scope, Undefined())
	assert.NoError(t, err)
	assert.Equal(t, "1|2|3", v.Str())
}

func TestDispatchMinRequiresAtLeastOneValue(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("min", scope, Undefined())
	var required *PropertyRequiredError
	assert.ErrorAs(t, err, &required)
}

func TestDispatchUnknownCommandIsPropertyNotFound(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("totallyUnknownCommand 1", scope, Undefined())
	var notFound *PropertyNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDispatchRandomWithArgsIsArgumentsLengthInvalid(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("random 1", scope, Undefined())
	var lenErr *ArgumentsLengthInvalidError
	assert.ErrorAs(t, err, &lenErr)
}

func TestDispatchAsyncUnknownShortFlagIsPropertyNotFound(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("async -P", scope, Undefined())
	var notFound *PropertyNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDispatchAsyncUnknownLongOptionIsPropertyNotFound(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("async --is-array", scope, Undefined())
	var notFound *PropertyNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDispatchAsyncFlagThenPositionalIsWrongArgumentPosition(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("async --as-array true 1", scope, Undefined())
	var wrongPos *WrongArgumentPositionError
	assert.ErrorAs(t, err, &wrongPos)
}

func TestDispatchConcatShortFlagAfterVariadicStartedIsWrongArgumentPosition(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	_, err := e.Parse("concat 1 2 3 -a", scope, Undefined())
	var wrongPos *WrongArgumentPositionError
	assert.ErrorAs(t, err, &wrongPos)
}

func TestKebabToCamel(t *testing.T) {
	assert.Equal(t, "asArray", kebabToCamel("as-array"))
	assert.Equal(t, "args", kebabToCamel("args"))
}
