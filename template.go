package xsh

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	templateTypeJS   = "js"
	templateTypeJSON = "json"
)

var (
	reLineDirective  = regexp.MustCompile(`(?m)^([ \t]*)//#xsh[ \t]+(.+?)([\r\n]+|$)`)
	reBlockDirective = regexp.MustCompile(`(?s)//#xsht[ \t]+(.+?)[\r\n]+(.*?)[\r\n]*///xsht`)
	reInlineDirective = regexp.MustCompile("`#xsh ([^`]+)`")
	reJSONDirective  = regexp.MustCompile(`^#xsh (.+)$`)
	reConstant       = regexp.MustCompile(`__XSH_(VAR|RUN|SYSTEM)_([A-Za-z0-9_]+?)__`)
)

// registerTemplateRules installs the template category's ladder, in the
// Order renderJSTemplate/renderJSONTemplate walk it via IterForType. A
// host Config can add further entries (with a Callback, for a name not
// matched by the switch in renderJSTemplate/renderJSONTemplate below) to
// extend either ladder, or entries with no Types to run in both.
func registerTemplateRules(reg *RuleRegistry) {
	reg.Register(CategoryTemplate, &Rule{Name: "block-directive", Order: -9999, Meta: RuleMeta{Types: []string{templateTypeJS}}})
	reg.Register(CategoryTemplate, &Rule{Name: "line-directive", Order: -9000, Meta: RuleMeta{Types: []string{templateTypeJS}}})
	reg.Register(CategoryTemplate, &Rule{Name: "inline-directive", Order: -8000, Meta: RuleMeta{Types: []string{templateTypeJS}}})
	reg.Register(CategoryTemplate, &Rule{Name: "constants", Order: -7000, Meta: RuleMeta{Types: []string{templateTypeJS}}})
	reg.Register(CategoryTemplate, &Rule{Name: "json-directive", Order: -9999, Meta: RuleMeta{Types: []string{templateTypeJSON}}})
}

// formatDirectiveResult implements the formatting rule for
// line/block/inline directives: number/string/bigint become their literal
// string form, anything else becomes the empty string (so the surrounding
// line is blanked rather than filled with a Go %v dump).
func formatDirectiveResult(v Value) string {
	switch v.Kind() {
	case KindInt, KindFloat, KindString:
		return v.String()
	default:
		return ""
	}
}

// ParseTemplate runs the template-category rules (filtered by typ) over
// source: the parseTemplate(source, type, scope) entry point.
func (e *Engine) ParseTemplate(source, typ string, scope *Scope) (string, error) {
	switch typ {
	case templateTypeJSON:
		return e.renderJSONTemplate(source, scope)
	default:
		return e.renderJSTemplate(source, scope)
	}
}

// ParseTemplateAsync is ParseTemplate's deferred dual.
func (e *Engine) ParseTemplateAsync(source, typ string, scope *Scope) *Deferred {
	return Go(func() (Value, error) {
		s, err := e.ParseTemplate(source, typ, scope)
		return Str(s), err
	})
}

// renderJSTemplate walks the CategoryTemplate rules registered for "js",
// in Order, dispatching the four built-in stages by name and running any
// other rule's Callback against the running text — a continueLadder
// return leaves the text untouched and moves to the next rule.
func (e *Engine) renderJSTemplate(source string, scope *Scope) (string, error) {
	out := source
	for _, rule := range e.rules.IterForType(CategoryTemplate, templateTypeJS) {
		var err error
		switch rule.Name {
		case "block-directive":
			out, err = e.expandBlockDirectives(out, scope)
		case "line-directive":
			out, err = e.expandLineDirectives(out, scope)
		case "inline-directive":
			out, err = e.expandInlineDirectives(out, scope)
		case "constants":
			out, err = e.expandConstants(out, scope)
		default:
			out, err = e.runTemplateRuleCallback(rule, out, scope)
		}
		if err != nil {
			return "", err
		}
	}
	return out, nil
}

// runTemplateRuleCallback invokes a host-registered template rule's
// Callback against the current text, folding its result (when non-nil
// and not a continueLadder skip) back into the text stream.
func (e *Engine) runTemplateRuleCallback(rule *Rule, text string, scope *Scope) (string, error) {
	if rule.Callback == nil {
		return text, nil
	}
	v, err := rule.Callback(&RuleContext{Engine: e, Scope: scope, Rule: rule, Text: text})
	if err == continueLadder {
		return text, nil
	}
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (e *Engine) expandBlockDirectives(source string, scope *Scope) (string, error) {
	var outerErr error
	out := reBlockDirective.ReplaceAllStringFunc(source, func(match string) string {
		m := reBlockDirective.FindStringSubmatch(match)
		command, body := m[1], m[2]
		child := scope.Child()
		child.setLocal("template", Str(body))
		child.setLocal("offset", Int(0))
		v, err := e.Exec(command, child)
		if err != nil {
			outerErr = err
			return match
		}
		return formatDirectiveResult(v)
	})
	return out, outerErr
}

func (e *Engine) expandLineDirectives(source string, scope *Scope) (string, error) {
	var outerErr error
	out := reLineDirective.ReplaceAllStringFunc(source, func(match string) string {
		m := reLineDirective.FindStringSubmatch(match)
		command, terminator := m[2], m[3]
		v, err := e.Exec(command, scope)
		if err != nil {
			outerErr = err
			return match
		}
		return formatDirectiveResult(v) + terminator
	})
	return out, outerErr
}

func (e *Engine) expandInlineDirectives(source string, scope *Scope) (string, error) {
	var outerErr error
	out := reInlineDirective.ReplaceAllStringFunc(source, func(match string) string {
		m := reInlineDirective.FindStringSubmatch(match)
		v, err := e.Exec(m[1], scope)
		if err != nil {
			outerErr = err
			return match
		}
		return formatDirectiveResult(v)
	})
	return out, outerErr
}

// expandConstants implements the __XSH_VAR_<NAME>__ / __XSH_RUN_<NAME>__ /
// __XSH_SYSTEM_<NAME>__ family: <NAME> is lower-cased if it started with
// "_" (as in __XSH_VAR__NAME__), else snake_case is converted to camelCase
// before the getVar lookup.
func (e *Engine) expandConstants(source string, scope *Scope) (string, error) {
	var outerErr error
	out := reConstant.ReplaceAllStringFunc(source, func(match string) string {
		m := reConstant.FindStringSubmatch(match)
		kind, name := m[1], m[2]
		var varName string
		if strings.HasPrefix(name, "_") {
			varName = strings.ToLower(name)
		} else {
			varName = snakeToCamel(name)
		}
		switch kind {
		case "VAR":
			v := scope.GetVar([]string{varName}, Undefined())
			return formatDirectiveResult(v)
		case "RUN":
			v := scope.GetVar([]string{varName}, Undefined())
			forced, err := e.ForceEval(v, scope)
			if err != nil {
				outerErr = err
				return match
			}
			return formatDirectiveResult(forced)
		case "SYSTEM":
			v := e.lookupSystem(varName, scope)
			return formatDirectiveResult(v)
		default:
			return match
		}
	})
	return out, outerErr
}

func (e *Engine) lookupSystem(name string, scope *Scope) Value {
	globalNS := scope.GetVar([]string{"global"}, Undefined())
	if globalNS.Kind() != KindMap {
		return Undefined()
	}
	v, ok := globalNS.Map().Get(name)
	if !ok {
		return Undefined()
	}
	return v
}

func snakeToCamel(s string) string {
	parts := strings.Split(strings.ToLower(s), "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// renderJSONTemplate walks the CategoryTemplate rules registered for
// "json", in Order. The built-in "json-directive" stage replaces each
// JSON string value matching `"#xsh <command>"` in place — a string
// result is re-escaped and re-quoted, array/map results are
// JSON-serialized, scalars are inlined bare (so booleans/numbers lose
// their quotes). Any other rule's Callback runs against the marshaled
// text between stages, the same extension point renderJSTemplate offers.
func (e *Engine) renderJSONTemplate(source string, scope *Scope) (string, error) {
	out := source
	for _, rule := range e.rules.IterForType(CategoryTemplate, templateTypeJSON) {
		if rule.Name != "json-directive" {
			var err error
			out, err = e.runTemplateRuleCallback(rule, out, scope)
			if err != nil {
				return "", err
			}
			continue
		}
		var root any
		if err := json.Unmarshal([]byte(out), &root); err != nil {
			return "", &ParameterTypeInvalidError{Helper: "renderJSONTemplate", Parameter: "source"}
		}
		transformed, err := e.transformJSONNode(root, scope)
		if err != nil {
			return "", err
		}
		marshaled, err := json.Marshal(transformed)
		if err != nil {
			return "", err
		}
		out = string(marshaled)
	}
	return out, nil
}

func (e *Engine) transformJSONNode(node any, scope *Scope) (any, error) {
	switch t := node.(type) {
	case string:
		m := reJSONDirective.FindStringSubmatch(t)
		if m == nil {
			return t, nil
		}
		v, err := e.Exec(m[1], scope)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			transformed, err := e.transformJSONNode(item, scope)
			if err != nil {
				return nil, err
			}
			out[i] = transformed
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			transformed, err := e.transformJSONNode(v, scope)
			if err != nil {
				return nil, err
			}
			out[k] = transformed
		}
		return out, nil
	default:
		return t, nil
	}
}
