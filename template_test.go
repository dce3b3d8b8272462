package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplateLineDirective(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	src := "//#xsh 1+2\nconsole.log(x)\n"
	out, err := e.ParseTemplate(src, "js", scope)
	assert.NoError(t, err)
	assert.Equal(t, "3\nconsole.log(x)\n", out)
}

func TestParseTemplateInlineDirective(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	src := "value: `#xsh 2*3` end"
	out, err := e.ParseTemplate(src, "js", scope)
	assert.NoError(t, err)
	assert.Equal(t, "value: 6 end", out)
}

func TestParseTemplateBlockDirectiveReceivesTemplateLocal(t *testing.T) {
	e := newTestEngine()
	RegisterBuiltins(e)
	scope := e.NewScope()
	src := "//#xsht $template\nbody text\n///xsht"
	out, err := e.ParseTemplate(src, "js", scope)
	assert.NoError(t, err)
	assert.Equal(t, "body text", out)
}

func TestParseTemplateConstantVarExpandsFromScope(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	scope.setLocal("userName", Str("ada"))
	out, err := e.ParseTemplate("hello __XSH_VAR_USER_NAME__", "js", scope)
	assert.NoError(t, err)
	assert.Equal(t, "hello ada", out)
}

func TestParseTemplateConstantRunForceEvaluatesStringThenRenders(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	scope.setLocal("expr", Str("1+1"))
	out, err := e.ParseTemplate("answer: __XSH_RUN_EXPR__", "js", scope)
	assert.NoError(t, err)
	assert.Equal(t, "answer: 2", out)
}

func TestParseTemplateJSONDirectiveReplacesStringValue(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	src := `{"a":"#xsh 1+2","b":"plain"}`
	out, err := e.ParseTemplate(src, "json", scope)
	assert.NoError(t, err)
	assert.Contains(t, out, `"a":3`)
	assert.Contains(t, out, `"b":"plain"`)
}

func TestParseTemplateJSONDirectiveOnNestedArray(t *testing.T) {
	e := newTestEngine()
	scope := e.NewScope()
	src := `{"items":["#xsh 1+1","literal"]}`
	out, err := e.ParseTemplate(src, "json", scope)
	assert.NoError(t, err)
	assert.Contains(t, out, `"items":[2,"literal"]`)
}

func TestFormatDirectiveResultBlanksNonScalar(t *testing.T) {
	assert.Equal(t, "", formatDirectiveResult(Undefined()))
	assert.Equal(t, "", formatDirectiveResult(SeqOf([]Value{Int(1)})))
	assert.Equal(t, "3", formatDirectiveResult(Int(3)))
}

func TestSnakeToCamel(t *testing.T) {
	assert.Equal(t, "userName", snakeToCamel("USER_NAME"))
	assert.Equal(t, "name", snakeToCamel("NAME"))
}
