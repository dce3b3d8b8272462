package xsh

import (
	"strconv"
	"strings"
)

// MathOperators is the operator list shared by the converter's rung 5 and
// registerMathRules. Rung 5 splits on the first entry of this list that a
// token contains, so the list runs from the loosest-binding operators to
// the tightest, and a longer token comes before its prefix — critically
// "===" before "==", "!==" before "!=", ">=" before ">".
var MathOperators = []string{
	"===", "!==", "==", "!=", ">=", "<=", ">", "<", "+", "-", "*", "/", "%",
}

// Convert classifies and evaluates a scalar leaf string through an
// eleven-rung ladder, generalized from a fixed AST-node type-switch
// dispatch into an explicit ordered iteration over fallback rungs. Any
// host-registered CategoryConvert rule runs first, in Order, ahead of the
// fixed rungs below — a rule returns continueLadder to defer to the next
// rule or to the fixed ladder.
func (e *Engine) Convert(token string, scope *Scope) (Value, error) {
	if v, handled, err := e.runRules(CategoryConvert, token, nil, scope); handled {
		return v, err
	}
	rungs := []func(string, *Scope) rungResult{
		e.rungKeyword,
		e.rungNumber,
		e.rungFlag,
		e.rungMath,
		e.rungCommandExpr,
		e.rungVariable,
		e.rungParenExpr,
		e.rungArrayLit,
		e.rungObjectLit,
	}
	for _, rung := range rungs {
		res := rung(token, scope)
		if !res.handled {
			continue
		}
		return res.value, res.err
	}
	return e.rungBareCommand(token, scope)
}

// rungKeyword — rung 2: exact "null"/"undefined"/""/"true"/"false".
func (e *Engine) rungKeyword(token string, _ *Scope) rungResult {
	switch token {
	case "null":
		return tried(Null())
	case "undefined":
		return tried(Undefined())
	case "":
		return tried(Str(""))
	case "true":
		return tried(Bool(true))
	case "false":
		return tried(Bool(false))
	default:
		return skip()
	}
}

// rungNumber — rung 3: pure integer or float.
func (e *Engine) rungNumber(token string, _ *Scope) rungResult {
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return tried(Int(i))
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil && looksNumeric(token) {
		return tried(Float(f))
	}
	return skip()
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i++
	}
	sawDigit, sawDot := false, false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			sawDigit = true
		case s[i] == '.' && !sawDot:
			sawDot = true
		default:
			return false
		}
	}
	return sawDigit
}

// rungFlag — rung 4: a token starting with "-" that isn't itself a number
// passes through as a flag/mode marker string.
func (e *Engine) rungFlag(token string, _ *Scope) rungResult {
	if strings.HasPrefix(token, "-") && !looksNumeric(token) {
		return tried(Str(token))
	}
	return skip()
}

// rungMath — rung 5: contains a math operator; split on the first operator
// of MathOperators that the token contains, recursively convert operands,
// left-fold under its rule. A token that is one whole "(...)", "[...]" or
// "{...}" group is left to rungParenExpr/rungArrayLit/rungObjectLit.
func (e *Engine) rungMath(token string, scope *Scope) rungResult {
	for _, pair := range []string{"()", "[]", "{}"} {
		if strings.HasPrefix(token, pair[:1]) && strings.HasSuffix(token, pair[1:]) {
			return skip()
		}
	}
	op, idx := firstMathOperator(token)
	if op == "" {
		return skip()
	}
	left := strings.TrimSpace(token[:idx])
	right := strings.TrimSpace(token[idx+len(op):])
	if left == "" || right == "" {
		return skip()
	}
	operands, err := e.convertOperandChain(token, op, scope)
	if err != nil {
		return failed(err)
	}
	result, err := e.FoldMath(op, operands, scope)
	if err != nil {
		return failed(err)
	}
	return tried(result)
}

// convertOperandChain splits token on every top-level occurrence of op and
// converts each piece, supporting a flattened left-fold chain like
// "1+2+3" rather than forcing strictly binary recursion.
func (e *Engine) convertOperandChain(token, op string, scope *Scope) ([]Value, error) {
	pieces := splitOnOperator(token, op)
	operands := make([]Value, 0, len(pieces))
	for _, p := range pieces {
		v, err := e.Convert(strings.TrimSpace(p), scope)
		if err != nil {
			return nil, err
		}
		operands = append(operands, v)
	}
	return operands, nil
}

func firstMathOperator(s string) (op string, idx int) {
	for _, candidate := range MathOperators {
		if i := strings.Index(s, candidate); i >= 0 {
			return candidate, i
		}
	}
	return "", -1
}

func splitOnOperator(s, op string) []string {
	return strings.Split(s, op)
}

// rungVariable — rung 6: starts with "$".
func (e *Engine) rungVariable(token string, scope *Scope) rungResult {
	if !strings.HasPrefix(token, "$") {
		return skip()
	}
	force := strings.HasPrefix(token, "$$")
	body := token[1:]
	if force {
		body = token[2:]
	}
	segments := SplitPath(body)
	resolved := make([]string, len(segments))
	for i, seg := range segments {
		if strings.Contains(seg, "(") {
			v, err := e.Convert(seg, scope)
			if err != nil {
				return failed(err)
			}
			resolved[i] = v.String()
			continue
		}
		resolved[i] = seg
	}
	val := scope.GetVar(resolved, Undefined())
	if force {
		forced, err := e.ForceEval(val, scope)
		if err != nil {
			return failed(err)
		}
		return tried(forced)
	}
	return tried(val)
}

// rungParenExpr — rung 7: "(...)" re-enters exec on the inner text; also
// the landing spot for normalizer "$$hash" brace-group placeholders once
// resolved to their stashed original text.
func (e *Engine) rungParenExpr(token string, scope *Scope) rungResult {
	if !strings.HasPrefix(token, "(") || !strings.HasSuffix(token, ")") {
		return skip()
	}
	inner := token[1 : len(token)-1]
	v, err := e.Exec(inner, scope)
	if err != nil {
		return failed(err)
	}
	return tried(v)
}

// rungArrayLit — rung 8: "[...]" splits on "," then converts each item.
func (e *Engine) rungArrayLit(token string, scope *Scope) rungResult {
	if !strings.HasPrefix(token, "[") || !strings.HasSuffix(token, "]") {
		return skip()
	}
	inner := token[1 : len(token)-1]
	items := splitCommaList(inner)
	values := make([]Value, 0, len(items))
	hasDeferred := false
	for _, item := range items {
		v, err := e.Convert(strings.TrimSpace(item), scope)
		if err != nil {
			return failed(err)
		}
		if v.IsDeferred() {
			hasDeferred = true
		}
		values = append(values, v)
	}
	if hasDeferred {
		d := NewDeferred()
		go func() {
			resolved, err := AwaitAll(values)
			if err != nil {
				d.Reject(err)
				return
			}
			d.Resolve(SeqOf(resolved))
		}()
		return tried(DeferredValue(d))
	}
	return tried(SeqOf(values))
}

// rungObjectLit — rung 9: "{...}" splits on "," then each element on ":".
// Keyless items get integer indices starting at 0 in positional order.
func (e *Engine) rungObjectLit(token string, scope *Scope) rungResult {
	if !strings.HasPrefix(token, "{") || !strings.HasSuffix(token, "}") {
		return skip()
	}
	inner := token[1 : len(token)-1]
	items := splitCommaList(inner)
	m := NewOrderedMap()
	autoIdx := 0
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, val, hasKey := splitOnColon(item)
		keyVal, err := e.Convert(strings.TrimSpace(key), scope)
		if err != nil {
			return failed(err)
		}
		var valVal Value
		if hasKey {
			valVal, err = e.Convert(strings.TrimSpace(val), scope)
			if err != nil {
				return failed(err)
			}
			m.Set(keyVal.String(), valVal)
		} else {
			// keyless item: key re-interpreted as the value, integer index assigned
			m.Set(strconv.Itoa(autoIdx), keyVal)
			autoIdx++
		}
	}
	return tried(MapOf(m))
}

func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func splitOnColon(item string) (key, val string, hasKey bool) {
	idx := strings.Index(item, ":")
	if idx < 0 {
		return item, "", false
	}
	return item[:idx], item[idx+1:], true
}

// rungCommandExpr handles normalizer-produced "$$_bN" brace-group
// placeholders: the stashed text still carries its original delimiters,
// so resolving it through Convert lands back on rungParenExpr/
// rungArrayLit/rungObjectLit above. It must run before rungVariable:
// rungVariable's own "$$" handling force-evaluates through ForceEval,
// which re-parses via Exec, which re-normalizes the stashed text and
// mints a fresh placeholder for the same brace group, recursing forever.
// Restricting the match to names starting with "_" (the reserved
// placeholder prefix nextPlaceholder mints) keeps this rung from also
// swallowing a plain user "$$variable" force-eval reference, which still
// needs rungVariable's own handling.
func (e *Engine) rungCommandExpr(token string, scope *Scope) rungResult {
	if !strings.HasPrefix(token, "$$") {
		return skip()
	}
	name := token[2:]
	if name == "" || name[0] != '_' || strings.ContainsAny(name, ".([{") {
		return skip()
	}
	stashed, ok := scope.local(name)
	if !ok {
		stashed, ok = scope.global.Get(name)
	}
	if !ok || stashed.Kind() != KindString {
		return skip()
	}
	v, err := e.Convert(stashed.Str(), scope)
	if err != nil {
		return failed(err)
	}
	return tried(v)
}

// rungBareCommand — rung 10/11: if token still decomposes under the
// splitter (it contains whitespace or an operator the earlier rungs
// didn't already consume, e.g. an array element holding a full
// "name arg arg" sub-expression), re-enter exec on it. Otherwise it is a
// single bare word: invoke it as a zero-argument registered command if
// one matches, else treat it as a bare string literal — the converter's
// ultimate fallback, since a word that is none of keyword/number/flag/
// math/variable/group/array/object/command is just text.
func (e *Engine) rungBareCommand(token string, scope *Scope) (Value, error) {
	if splitsFurther(token) {
		return e.Exec(token, scope)
	}
	if cmd, ok := e.commands.Lookup(token); ok {
		return e.dispatch(cmd, nil, scope)
	}
	return Str(token), nil
}

// splitsFurther reports whether token contains any splitter operator
// (including the space used for command application), meaning re-entering
// exec on it would actually make progress rather than reproduce the same
// single leaf and recurse forever.
func splitsFurther(token string) bool {
	for _, op := range SplitOperators {
		if strings.Contains(token, op.Key) {
			return true
		}
	}
	return false
}

// looksLikeBareWord reports whether token is shaped like a command name
// rather than a literal, variable reference or bracketed expression —
// used by foldParam to decide whether an unresolved head is an attempted
// call to an undefined command (PropertyNotFound) or just the first of
// several juxtaposed literals.
func looksLikeBareWord(token string) bool {
	switch token {
	case "", "null", "undefined", "true", "false":
		return false
	}
	c := token[0]
	if c >= '0' && c <= '9' {
		return false
	}
	switch c {
	case '-', '$', '(', '[', '{', '"', '\'':
		return false
	}
	return true
}
