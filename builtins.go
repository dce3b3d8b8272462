package xsh

import (
	"strings"
	"time"

	"github.com/oarkflow/date"
)

// RegisterBuiltins installs a small reference command set: concat, min,
// max, async, and a handful of date helpers wired to the oarkflow/date
// parser. A host embedding the engine is free to skip this and register
// only its own commands — these are not part of the core dispatch
// protocol, just reference content.
func RegisterBuiltins(e *Engine) {
	e.RegisterCommand(concatCommand())
	e.RegisterCommand(minCommand())
	e.RegisterCommand(maxCommand())
	e.RegisterCommand(asyncCommand())
	e.RegisterCommand(nowCommand())
	e.RegisterCommand(dateFormatCommand())
	e.RegisterCommand(dateParseCommand())
	e.RegisterCommand(dateAddCommand())
	e.RegisterCommand(dateAgeCommand())
	e.RegisterCommand(randomCommand())
}

// randomCommand declares zero positional arguments on purpose: it exists
// to exercise the negative scenario "random 1" → ArgumentsLengthInvalid.
func randomCommand() *Command {
	return &Command{
		Name:       "random",
		Positional: nil,
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			return Int(0), nil
		},
	}
}

// concatCommand handles the scenario
// "concat -ab -c -D --args 1 2 3 --delim \"|\"" → "1|2|3". The short-flag
// chars a/b/c/D fold into mode but don't affect concat's output — they
// exist to exercise the bit-mask binder; concat's Fn never reads mode.
func concatCommand() *Command {
	return &Command{
		Name: "concat",
		Positional: []PositionalArg{
			{Name: "mode", Kind: ArgMode},
			{Name: "args", Variadic: true},
			{Name: "delim", Default: Str(",")},
		},
		ModeArg: "mode",
		Flags: []FlagBit{
			{Char: 'a', Bit: 1 << 0},
			{Char: 'b', Bit: 1 << 1},
			{Char: 'c', Bit: 1 << 2},
			{Char: 'D', Bit: 1 << 3},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			items := tail
			if named, ok := bound["args"]; ok && named.Kind() == KindSeq {
				items = named.Seq()
			}
			parts := make([]string, len(items))
			for i, v := range items {
				parts[i] = v.String()
			}
			delim := bound["delim"].String()
			return Str(strings.Join(parts, delim)), nil
		},
	}
}

func minCommand() *Command {
	return &Command{
		Name: "min",
		Positional: []PositionalArg{
			{Name: "values", Variadic: true, Required: true},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			if len(tail) == 0 {
				return Undefined(), &PropertyRequiredError{Command: "min", Argument: "values"}
			}
			best := tail[0]
			bestF, _ := best.ToFloat()
			for _, v := range tail[1:] {
				f, ok := v.ToFloat()
				if !ok {
					return Undefined(), &PropertyTypeMismatchError{Operator: "min", Expected: "numeric", Got: v.Kind().String()}
				}
				if f < bestF {
					best, bestF = v, f
				}
			}
			return best, nil
		},
	}
}

func maxCommand() *Command {
	return &Command{
		Name: "max",
		Positional: []PositionalArg{
			{Name: "values", Variadic: true, Required: true},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			if len(tail) == 0 {
				return Undefined(), &PropertyRequiredError{Command: "max", Argument: "values"}
			}
			best := tail[0]
			bestF, _ := best.ToFloat()
			for _, v := range tail[1:] {
				f, ok := v.ToFloat()
				if !ok {
					return Undefined(), &PropertyTypeMismatchError{Operator: "max", Expected: "numeric", Got: v.Kind().String()}
				}
				if f > bestF {
					best, bestF = v, f
				}
			}
			return best, nil
		},
	}
}

// asyncCommand declares "scope", a required "expr" positional and an
// optional "asArray" (default false). It declares no short flags and no
// "isArray" argument, so "async -P" and "async --is-array" surface
// PropertyNotFound; in "async --as-array true 1" the plain token 1 follows
// a long option, which the dispatch protocol rejects with
// WrongArgumentPosition. By
// the time Fn runs, expr is already a concrete Value: the dispatcher
// converted it before binding, so there is no source text left to
// re-parse here. What async defers is the handoff itself — the settle
// runs on its own goroutine rather than inline — so a caller chaining
// onto the result goes through the same Deferred.Await/AwaitAll path a
// genuinely slow command would produce. asArray wraps the settled value
// in a one-element Seq, for callers that want to range over async's
// result uniformly regardless of whether it ran asArray or not.
func asyncCommand() *Command {
	return &Command{
		Name: "async",
		Positional: []PositionalArg{
			{Name: "scope", Kind: ArgScope},
			{Name: "expr", Required: true},
			{Name: "asArray", Default: Bool(false)},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			expr := bound["expr"]
			asArray := bound["asArray"].Kind() == KindBool && bound["asArray"].Bool()
			d := Go(func() (Value, error) {
				if asArray {
					return SeqOf([]Value{expr}), nil
				}
				return expr, nil
			})
			return DeferredValue(d), nil
		},
	}
}

func nowCommand() *Command {
	return &Command{
		Name:       "now",
		Positional: []PositionalArg{},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			return Str(time.Now().Format(time.RFC3339)), nil
		},
	}
}

func dateFormatCommand() *Command {
	return &Command{
		Name: "date_format",
		Positional: []PositionalArg{
			{Name: "value", Required: true},
			{Name: "layout", Default: Str(time.RFC3339)},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			t, err := date.Parse(bound["value"].String())
			if err != nil {
				return Undefined(), &ParameterTypeInvalidError{Helper: "date_format", Parameter: "value"}
			}
			return Str(t.Format(bound["layout"].String())), nil
		},
	}
}

func dateParseCommand() *Command {
	return &Command{
		Name: "date_parse",
		Positional: []PositionalArg{
			{Name: "value", Required: true},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			t, err := date.Parse(bound["value"].String())
			if err != nil {
				return Undefined(), &ParameterTypeInvalidError{Helper: "date_parse", Parameter: "value"}
			}
			return Str(t.Format(time.RFC3339)), nil
		},
	}
}

func dateAddCommand() *Command {
	return &Command{
		Name: "date_add",
		Positional: []PositionalArg{
			{Name: "value", Required: true},
			{Name: "seconds", Required: true},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			t, err := date.Parse(bound["value"].String())
			if err != nil {
				return Undefined(), &ParameterTypeInvalidError{Helper: "date_add", Parameter: "value"}
			}
			secs, ok := bound["seconds"].ToFloat()
			if !ok {
				return Undefined(), &ParameterTypeInvalidError{Helper: "date_add", Parameter: "seconds"}
			}
			return Str(t.Add(time.Duration(secs) * time.Second).Format(time.RFC3339)), nil
		},
	}
}

func dateAgeCommand() *Command {
	return &Command{
		Name: "date_age",
		Positional: []PositionalArg{
			{Name: "value", Required: true},
		},
		Fn: func(scope *Scope, bound map[string]Value, tail []Value) (Value, error) {
			t, err := date.Parse(bound["value"].String())
			if err != nil {
				return Undefined(), &ParameterTypeInvalidError{Helper: "date_age", Parameter: "value"}
			}
			years := int(time.Since(t).Hours() / 24 / 365.25)
			return Int(int64(years)), nil
		},
	}
}
