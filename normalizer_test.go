package xsh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtractsQuotedLiteralIntoPlaceholder(t *testing.T) {
	scope := NewScope(nil)
	out := Normalize(`concat "a|b"`, scope)
	assert.True(t, strings.Contains(out, "$_q"))
	assert.False(t, strings.Contains(out, `"`))
}

func TestNormalizeCollapsesWhitespaceAndTrimsMathSpacing(t *testing.T) {
	scope := NewScope(nil)
	out := Normalize("1   +    2", scope)
	assert.Equal(t, "1+2", out)
}

func TestNormalizeExtractsSignedNumberAdjacentToOperator(t *testing.T) {
	scope := NewScope(nil)
	out := Normalize("1 + -2", scope)
	assert.True(t, strings.Contains(out, "$_n"))
}

func TestNormalizeFoldsInnermostBraceGroupsRepeatedly(t *testing.T) {
	scope := NewScope(nil)
	out := Normalize("((1+2)*3-4)/5", scope)
	assert.True(t, strings.HasPrefix(out, "$$_b"))
}

func TestNormalizeIdempotentOnAlreadyNormalizedInput(t *testing.T) {
	scope := NewScope(nil)
	once := Normalize("1+2", scope)
	twice := Normalize(once, scope)
	assert.Equal(t, once, twice)
}
