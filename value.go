package xsh

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the dynamic sum type every XSH value carries.
type Kind uint8

const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
	KindFunc
	KindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	case KindFunc:
		return "func"
	case KindDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// NativeFunc is a host- or engine-registered callable bound into a Value.
type NativeFunc func(args []Value, scope *Scope) (Value, error)

// FuncValue is either a native callable or a method bound to a receiver
// (the "this"-binding case produced by a dotted-path lookup landing on a
// callable member).
type FuncValue struct {
	Name     string
	Native   NativeFunc
	Receiver *Value
	Method   string
}

// OrderedMap is a keyed mapping that remembers insertion order, needed for
// stable template/JSON re-rendering and for the keyless-item positional
// index rule of the object literal grammar.
type OrderedMap struct {
	keys []string
	vals map[string]Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{vals: make(map[string]Value)}
}

func (m *OrderedMap) Set(key string, v Value) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *OrderedMap) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *OrderedMap) Keys() []string {
	return m.keys
}

func (m *OrderedMap) Len() int {
	return len(m.keys)
}

func (m *OrderedMap) Clone() *OrderedMap {
	clone := NewOrderedMap()
	for _, k := range m.keys {
		clone.Set(k, m.vals[k])
	}
	return clone
}

// Value is the tagged-union runtime value shared by every component:
// normalizer placeholders, converter results, command arguments and
// return values, and template substitutions.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	mp   *OrderedMap
	fn   *FuncValue
	def  *Deferred
}

func Null() Value      { return Value{kind: KindNull} }
func Undefined() Value { return Value{kind: KindUndefined} }
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}
func Str(s string) Value {
	return Value{kind: KindString, s: s}
}
func SeqOf(items []Value) Value {
	return Value{kind: KindSeq, seq: items}
}
func MapOf(m *OrderedMap) Value {
	return Value{kind: KindMap, mp: m}
}
func Fn(fn *FuncValue) Value {
	return Value{kind: KindFunc, fn: fn}
}
func DeferredValue(d *Deferred) Value {
	return Value{kind: KindDeferred, def: d}
}

func NativeFn(name string, fn NativeFunc) Value {
	return Fn(&FuncValue{Name: name, Native: fn})
}

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNullish() bool  { return v.kind == KindNull || v.kind == KindUndefined }
func (v Value) IsDeferred() bool { return v.kind == KindDeferred }
func (v Value) IsCallable() bool { return v.kind == KindFunc }

func (v Value) Bool() bool        { return v.b }
func (v Value) Int() int64        { return v.i }
func (v Value) Float() float64    { return v.f }
func (v Value) Str() string       { return v.s }
func (v Value) Seq() []Value      { return v.seq }
func (v Value) Map() *OrderedMap  { return v.mp }
func (v Value) Func() *FuncValue  { return v.fn }
func (v Value) Deferred() *Deferred { return v.def }

// Truthy implements the falsy set used by the && and || folds.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull, KindUndefined:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindSeq:
		return len(v.seq) > 0
	case KindMap:
		return v.mp != nil && v.mp.Len() > 0
	case KindFunc, KindDeferred:
		return true
	default:
		return false
	}
}

// ToFloat implements the numeric-coercion rule shared by comparisons and
// arithmetic.
func (v Value) ToFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Equal implements loose (==) and strict (===) equality.
func (v Value) Equal(other Value, strict bool) bool {
	if !strict {
		if v.IsNullish() && other.IsNullish() {
			return true
		}
		if v.IsNullish() != other.IsNullish() {
			return false
		}
	} else {
		if v.kind != other.kind {
			return false
		}
	}
	switch v.kind {
	case KindNull, KindUndefined:
		return other.IsNullish()
	case KindBool:
		if !strict {
			if ob, ok := other.ToBoolLoose(); ok {
				return v.b == ob
			}
			return false
		}
		return other.kind == KindBool && v.b == other.b
	case KindInt, KindFloat:
		if !strict {
			of, ok := other.ToFloat()
			vf, _ := v.ToFloat()
			return ok && vf == of
		}
		if other.kind != v.kind {
			return false
		}
		if v.kind == KindInt {
			return v.i == other.i
		}
		return v.f == other.f
	case KindString:
		if !strict {
			if other.kind == KindString {
				return v.s == other.s
			}
			if of, ok := other.ToFloat(); ok {
				if vf, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64); err == nil {
					return vf == of
				}
			}
			return false
		}
		return other.kind == KindString && v.s == other.s
	case KindSeq:
		if other.kind != KindSeq || len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i], strict) {
				return false
			}
		}
		return true
	case KindMap:
		if other.kind != KindMap {
			return false
		}
		if v.mp.Len() != other.mp.Len() {
			return false
		}
		for _, k := range v.mp.Keys() {
			a, _ := v.mp.Get(k)
			b, ok := other.mp.Get(k)
			if !ok || !a.Equal(b, strict) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ToBoolLoose is the loose-equality bridge used when comparing a bool to
// a number or string (0/""/"false" are falsy, anything else truthy).
func (v Value) ToBoolLoose() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindInt:
		return v.i != 0, true
	case KindFloat:
		return v.f != 0, true
	case KindString:
		return v.s != "" && v.s != "false" && v.s != "0", true
	default:
		return false, false
	}
}

// String renders a value the way the template engine and concat() expect:
// an integral float keeps one decimal place ("4.0"), an Int has none ("4").
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		if math.Trunc(v.f) == v.f && !math.IsInf(v.f, 0) {
			return strconv.FormatFloat(v.f, 'f', 1, 64)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindSeq:
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, 0, v.mp.Len())
		for _, k := range v.mp.Keys() {
			val, _ := v.mp.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunc:
		return "<fn " + v.fn.Name + ">"
	case KindDeferred:
		return "<deferred>"
	default:
		return ""
	}
}

// Interface converts a Value back to a plain Go value, used by the JSON
// template directive.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull, KindUndefined:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, v.mp.Len())
		for _, k := range v.mp.Keys() {
			val, _ := v.mp.Get(k)
			out[k] = val.Interface()
		}
		return out
	case KindFunc:
		return v.fn
	default:
		return nil
	}
}

// FromInterface lifts a plain Go value (as produced by encoding/json) into
// the engine's Value space.
func FromInterface(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return Float(t)
		}
		return Float(t)
	case string:
		return Str(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromInterface(e)
		}
		return SeqOf(items)
	case map[string]any:
		m := NewOrderedMap()
		for k, e := range t {
			m.Set(k, FromInterface(e))
		}
		return MapOf(m)
	default:
		return Undefined()
	}
}
