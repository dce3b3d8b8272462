package xsh

import (
	"strconv"
	"strings"
	"sync"
)

// Store is the global variable table owned by one Engine: a single
// mutex-guarded map that every Scope created from that Engine falls back to.
type Store struct {
	mu   sync.RWMutex
	vars map[string]Value
}

func NewStore() *Store {
	return &Store{vars: make(map[string]Value)}
}

func (s *Store) Get(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

func (s *Store) Set(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
}

// Scope is the two-tier lookup: a local map overlaying the Engine's
// global Store. Scopes are created per top-level parse
// call (or supplied by the caller), mutated during evaluation, and
// discarded on return.
type Scope struct {
	mu     sync.RWMutex
	vars   map[string]Value
	global *Store
}

// NewScope creates a scope backed by the given global store. Passing nil
// creates a fresh private store.
func NewScope(global *Store) *Scope {
	if global == nil {
		global = NewStore()
	}
	return &Scope{vars: make(map[string]Value), global: global}
}

// Child creates a fresh scope that shares the same global store but none
// of the parent's locals — used for template block bodies.
func (s *Scope) Child() *Scope {
	return NewScope(s.global)
}

func (s *Scope) local(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

func (s *Scope) setLocal(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
}

// isVariable ↔ s starts with "$".
func isVariable(s string) bool {
	return strings.HasPrefix(s, "$")
}

// isRunnableVariable ↔ s starts with "$$" (forces execution of callables
// or inline commands found at the referenced slot).
func isRunnableVariable(s string) bool {
	return strings.HasPrefix(s, "$$")
}

// GetVar resolves a simple name or dotted path against scope, then the
// global store, then the supplied default.
//
// Lookup rule for a simple name: scope[name] ?? globalVars[name] ?? default.
// For a sequence of keys, resolve the head, then for each subsequent key:
// if the current value is null-ish, return default; if it is deferred,
// the continuation itself defers and each subsequent key is applied
// inside it; if the resolved property is a callable bound to its parent
// object, return a callable bound to that parent as receiver.
func (s *Scope) GetVar(path []string, def Value) Value {
	if len(path) == 0 {
		return def
	}
	head := path[0]
	val, ok := s.local(head)
	if !ok {
		val, ok = s.global.Get(head)
	}
	if !ok {
		return def
	}
	return resolvePath(val, path[1:], def)
}

// GetVarAsync is kept as an explicit alias for readers of the async
// engine: path resolution is deferred-transparent regardless of call
// site, so it shares resolvePath with the sync entry point.
func (s *Scope) GetVarAsync(path []string, def Value) Value {
	return s.GetVar(path, def)
}

// resolvePath walks the remaining dotted-path segments against val. Once
// a link is itself deferred, the rest of the walk is chained onto its
// continuation and a new Deferred value is returned — transparent to
// both sync and async callers.
func resolvePath(val Value, rest []string, def Value) Value {
	for i, key := range rest {
		if val.IsDeferred() {
			return chainPath(val.Deferred(), rest[i:], def)
		}
		if val.IsNullish() {
			return def
		}
		next, _, found := lookupMember(val, key)
		if !found {
			return def
		}
		val = next
	}
	return val
}

func chainPath(src *Deferred, rest []string, def Value) Value {
	d := NewDeferred()
	src.OnSettle(func(resolved Value, err error) {
		if err != nil {
			d.Reject(err)
			return
		}
		result := resolvePath(resolved, rest, def)
		if result.IsDeferred() {
			result.Deferred().OnSettle(func(v2 Value, err2 error) {
				if err2 != nil {
					d.Reject(err2)
				} else {
					d.Resolve(v2)
				}
			})
			return
		}
		d.Resolve(result)
	})
	return DeferredValue(d)
}

// lookupMember resolves one dotted-path segment against a map or a
// sequence (numeric index); any other kind of value has no members. A
// callable map member comes back bound to the map as receiver (the
// this-binding case), and the returned bool reports that binding.
func lookupMember(val Value, key string) (Value, bool, bool) {
	switch val.Kind() {
	case KindMap:
		m := val.Map()
		if m == nil {
			return Undefined(), false, false
		}
		v, ok := m.Get(key)
		if !ok {
			return Undefined(), false, false
		}
		if v.IsCallable() {
			bound := *v.Func()
			receiver := val
			bound.Receiver = &receiver
			return Fn(&bound), true, true
		}
		return v, false, true
	case KindSeq:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(val.Seq()) {
			return Undefined(), false, false
		}
		return val.Seq()[idx], false, true
	default:
		return Undefined(), false, false
	}
}

// SetVar traverses all but the last path segment, creating missing
// intermediate maps, then assigns the last segment. A deferred
// intermediate is a hard error for writes (PropertyTypeMismatch).
func (s *Scope) SetVar(path []string, value Value) error {
	if len(path) == 0 {
		return &ParameterTypeInvalidError{Helper: "SetVar", Parameter: "path"}
	}
	if len(path) == 1 {
		s.setLocal(path[0], value)
		return nil
	}
	head := path[0]
	cur, ok := s.local(head)
	if !ok {
		cur, ok = s.global.Get(head)
	}
	if !ok || (cur.Kind() != KindMap && !cur.IsDeferred()) {
		cur = MapOf(NewOrderedMap())
	}
	if err := setPath(cur, path[1:], value); err != nil {
		return err
	}
	s.setLocal(head, cur)
	return nil
}

func setPath(container Value, path []string, value Value) error {
	if container.IsDeferred() {
		return &PropertyTypeMismatchError{Operator: ">>", Expected: "resolved value", Got: "deferred"}
	}
	if container.Kind() != KindMap {
		return &PropertyTypeMismatchError{Operator: ">>", Expected: "map", Got: container.Kind().String()}
	}
	m := container.Map()
	key := path[0]
	if len(path) == 1 {
		m.Set(key, value)
		return nil
	}
	next, ok := m.Get(key)
	if !ok || (next.Kind() != KindMap && !next.IsDeferred()) {
		next = MapOf(NewOrderedMap())
	}
	if err := setPath(next, path[1:], value); err != nil {
		return err
	}
	m.Set(key, next)
	return nil
}

// SplitPath splits a "$a.b.c"-style token's body into its dotted segments
// without interpreting "(...)" computed segments — that is the
// converter's job.
func SplitPath(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, ".")
}
