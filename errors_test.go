package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsMatchTaxonomy(t *testing.T) {
	cases := []struct {
		err  XSHError
		kind string
	}{
		{&PropertyNotFoundError{Property: "foo"}, "PropertyNotFound"},
		{&PropertyTypeMismatchError{Operator: "+"}, "PropertyTypeMismatch"},
		{&PropertyRequiredError{Command: "min", Argument: "values"}, "PropertyRequired"},
		{&ParameterTypeInvalidError{Helper: "evalNode"}, "ParameterTypeInvalid"},
		{&VariableTypeInvalidError{Name: "x"}, "VariableTypeInvalid"},
		{&AssertFailedError{Expected: []string{"int"}, Got: "string"}, "AssertFailed"},
		{&ArgumentsLengthInvalidError{Command: "random"}, "ArgumentsLengthInvalid"},
		{&WrongArgumentPositionError{Command: "concat"}, "WrongArgumentPosition"},
		{&MathResultInvalidError{Operator: "+"}, "MathResultInvalid"},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, c.err.Kind())
		assert.Contains(t, c.err.Error(), c.kind)
	}
}

func TestPropertyNotFoundErrorIncludesSuggestionInMessage(t *testing.T) {
	err := &PropertyNotFoundError{Property: "cancat", Context: "command", Suggestion: "concat"}
	assert.Contains(t, err.Error(), "did you mean")
	assert.Contains(t, err.Error(), "concat")
	assert.Equal(t, "concat", err.Payload()["suggestion"])
}

func TestPropertyNotFoundErrorOmitsSuggestionWhenEmpty(t *testing.T) {
	err := &PropertyNotFoundError{Property: "xyz", Context: "command"}
	assert.NotContains(t, err.Error(), "did you mean")
	_, ok := err.Payload()["suggestion"]
	assert.False(t, ok)
}

func TestRungResultHelpers(t *testing.T) {
	r := tried(Int(1))
	assert.True(t, r.handled)
	assert.NoError(t, r.err)
	assert.Equal(t, int64(1), r.value.Int())

	r = skip()
	assert.False(t, r.handled)

	r = failed(&MathResultInvalidError{Operator: "+"})
	assert.True(t, r.handled)
	assert.Error(t, r.err)
}

func TestErrorsAreDistinguishableByConcreteType(t *testing.T) {
	var err error = &ArgumentsLengthInvalidError{Command: "random", Expected: "0", Got: 1}
	var lenErr *ArgumentsLengthInvalidError
	assert.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 1, lenErr.Got)

	_, isNotFound := err.(*PropertyNotFoundError)
	assert.False(t, isNotFound)
}
