package xsh

// MathFoldFunc is the fold callback of one math operator: it combines the
// accumulator with the next operand. mathFolds maps each operator token to
// its callback, data-driven rather than a fixed type switch.
type MathFoldFunc func(acc, operand Value, scope *Scope) (Value, error)

var mathFolds = map[string]MathFoldFunc{
	"+":   foldAdd,
	"-":   foldArith('-'),
	"*":   foldArith('*'),
	"/":   foldArith('/'),
	"%":   foldArith('%'),
	">":   foldCompare('>'),
	"<":   foldCompare('<'),
	">=":  foldCompare('g'),
	"<=":  foldCompare('l'),
	"==":  foldEqual(false),
	"!=":  foldNotEqual(false),
	"===": foldEqual(true),
	"!==": foldNotEqual(true),
}

// FoldMath implements the left fold: acc starts at operands[0]; each
// subsequent operand folds through the operator's callback. A
// host-registered CategoryMath rule whose Key matches op and carries a
// Callback overrides (or, via continueLadder, defers to) the built-in
// mathFolds entry, so a plugin can add or replace an operator without
// touching this file.
func (e *Engine) FoldMath(op string, operands []Value, scope *Scope) (Value, error) {
	fold := e.lookupMathFold(op)
	if fold == nil {
		return Undefined(), &MathResultInvalidError{Operator: op}
	}
	if len(operands) == 0 {
		return Undefined(), &MathResultInvalidError{Operator: op}
	}
	acc := operands[0]
	for _, operand := range operands[1:] {
		next, err := fold(acc, operand, scope)
		if err != nil {
			return Undefined(), err
		}
		acc = next
	}
	if acc.IsUndefined() {
		return Undefined(), &MathResultInvalidError{Operator: op}
	}
	return acc, nil
}

func (e *Engine) lookupMathFold(op string) MathFoldFunc {
	for _, rule := range e.rules.Iter(CategoryMath) {
		if rule.Key != op || rule.Callback == nil {
			continue
		}
		cb, r := rule.Callback, rule
		return func(acc, operand Value, scope *Scope) (Value, error) {
			v, err := cb(&RuleContext{Engine: e, Scope: scope, Rule: r, Operand1: acc, Operand2: operand})
			if err == continueLadder {
				if fold, ok := mathFolds[op]; ok {
					return fold(acc, operand, scope)
				}
				return Undefined(), &MathResultInvalidError{Operator: op}
			}
			return v, err
		}
	}
	if fold, ok := mathFolds[op]; ok {
		return fold
	}
	return nil
}

func foldAdd(acc, operand Value, _ *Scope) (Value, error) {
	switch {
	case acc.Kind() == KindString || operand.Kind() == KindString:
		return Str(acc.String() + operand.String()), nil
	case acc.Kind() == KindSeq:
		if operand.Kind() != KindSeq {
			return Undefined(), &PropertyTypeMismatchError{Operator: "+", Expected: "seq", Got: operand.Kind().String()}
		}
		return SeqOf(append(append([]Value{}, acc.Seq()...), operand.Seq()...)), nil
	case acc.Kind() == KindMap:
		if operand.Kind() != KindMap {
			return Undefined(), &PropertyTypeMismatchError{Operator: "+", Expected: "map", Got: operand.Kind().String()}
		}
		merged := acc.Map().Clone()
		for _, k := range operand.Map().Keys() {
			v, _ := operand.Map().Get(k)
			merged.Set(k, v)
		}
		return MapOf(merged), nil
	default:
		af, aok := acc.ToFloat()
		bf, bok := operand.ToFloat()
		if !aok || !bok {
			return Undefined(), &PropertyTypeMismatchError{Operator: "+", Expected: "numeric", Got: operand.Kind().String()}
		}
		return numericResult(af+bf, acc, operand), nil
	}
}

func foldArith(op byte) MathFoldFunc {
	return func(acc, operand Value, _ *Scope) (Value, error) {
		af, aok := acc.ToFloat()
		bf, bok := operand.ToFloat()
		if !aok || !bok {
			return Undefined(), &PropertyTypeMismatchError{Operator: string(op), Expected: "numeric", Got: operand.Kind().String()}
		}
		var result float64
		switch op {
		case '-':
			result = af - bf
		case '*':
			result = af * bf
		case '/':
			if bf == 0 {
				return Undefined(), &PropertyTypeMismatchError{Operator: "/", Expected: "nonzero divisor", Got: "0"}
			}
			result = af / bf
		case '%':
			if bf == 0 {
				return Undefined(), &PropertyTypeMismatchError{Operator: "%", Expected: "nonzero divisor", Got: "0"}
			}
			result = float64(int64(af) % int64(bf))
		}
		return numericResult(result, acc, operand), nil
	}
}

// numericResult keeps an integer Value when both operands were integral
// and the result has no fractional part, a toFloat-then-renormalize
// pattern.
func numericResult(f float64, a, b Value) Value {
	if a.Kind() == KindInt && b.Kind() == KindInt && f == float64(int64(f)) {
		return Int(int64(f))
	}
	return Float(f)
}

var compareOperatorNames = map[byte]string{'>': ">", '<': "<", 'g': ">=", 'l': "<="}

func foldCompare(op byte) MathFoldFunc {
	return func(acc, operand Value, _ *Scope) (Value, error) {
		af, aok := acc.ToFloat()
		bf, bok := operand.ToFloat()
		if !aok || !bok {
			return Undefined(), &PropertyTypeMismatchError{Operator: compareOperatorNames[op], Expected: "numeric", Got: operand.Kind().String()}
		}
		var result bool
		switch op {
		case '>':
			result = af > bf
		case '<':
			result = af < bf
		case 'g':
			result = af >= bf
		case 'l':
			result = af <= bf
		}
		return Bool(result), nil
	}
}

func foldEqual(strict bool) MathFoldFunc {
	return func(acc, operand Value, _ *Scope) (Value, error) {
		return Bool(acc.Equal(operand, strict)), nil
	}
}

func foldNotEqual(strict bool) MathFoldFunc {
	return func(acc, operand Value, _ *Scope) (Value, error) {
		return Bool(!acc.Equal(operand, strict)), nil
	}
}

// registerMathRules installs descriptive Rule entries for the math
// category so introspecting callers (and iterForType, for parity with the
// other categories) can see the operator table; the fold dispatch itself
// runs through the mathFolds map above for directness.
func registerMathRules(reg *RuleRegistry) {
	order := 0
	for _, op := range MathOperators {
		reg.Register(CategoryMath, &Rule{Name: "math:" + op, Key: op, Order: order, Meta: RuleMeta{Token: op}})
		order++
	}
}

// isMathToken reports whether s is one of the recognized operator tokens
// (a membership check against MathOperators).
func isMathToken(s string) bool {
	for _, op := range MathOperators {
		if s == op {
			return true
		}
	}
	return false
}
