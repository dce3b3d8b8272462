package xsh

// Engine is the configuration-time-built, read-only-during-evaluation
// instance that replaces process-global registries: one Engine owns one
// RuleRegistry, one CommandRegistry and one global Store, and every entry
// point hangs off it rather than off package-level state.
type Engine struct {
	rules    *RuleRegistry
	commands *CommandRegistry
	global   *Store
}

// New creates an Engine with empty registries and installs no rules —
// callers typically follow with SetConfig(Plugin()) to get the built-in
// core, then layer their own commands and rules on top.
func New() *Engine {
	return &Engine{
		rules:    NewRuleRegistry(),
		commands: NewCommandRegistry(),
		global:   NewStore(),
	}
}

// SetConfig installs plugins first (recursively flattened), then this
// Config's own commands, then its own rules — the documented order for
// setConfig({ plugins?, commands?, rules? }).
func (e *Engine) SetConfig(cfg Config) {
	flat := FlattenConfigs(cfg)
	for _, c := range flat {
		for _, cmd := range c.Commands {
			e.commands.Register(cmd)
		}
		e.rules.InstallConfig(c)
	}
}

// NewScope creates a fresh local scope backed by this Engine's global
// store, the per-top-level-parse-call scope lifecycle.
func (e *Engine) NewScope() *Scope {
	return NewScope(e.global)
}

// Parse is the parse(source, scope?, context?, async?) entry point in
// its synchronous form.
func (e *Engine) Parse(source string, scope *Scope, context Value) (Value, error) {
	if scope == nil {
		scope = e.NewScope()
	}
	if !context.IsUndefined() {
		scope.setLocal("context", context)
	}
	return e.Exec(source, scope)
}

// ParseAsync is Parse's deferred dual.
func (e *Engine) ParseAsync(source string, scope *Scope, context Value) *Deferred {
	if scope == nil {
		scope = e.NewScope()
	}
	if !context.IsUndefined() {
		scope.setLocal("context", context)
	}
	return e.ExecAsync(source, scope)
}

// SetVar writes into the Engine's global store directly — the
// package-level counterpart to Scope.SetVar for host callers that have no
// scope of their own (the setVar(name, value) entry point).
func (e *Engine) SetVar(name string, value Value) {
	e.global.Set(name, value)
}

// GetVar reads from the Engine's global store, optionally through scope
// first if one is supplied.
func (e *Engine) GetVar(name string, scope *Scope) Value {
	if scope != nil {
		return scope.GetVar(SplitPath(name), Undefined())
	}
	v, ok := e.global.Get(name)
	if !ok {
		return Undefined()
	}
	return v
}

// RegisterCommand registers a single command directly on the Engine's
// CommandRegistry — the lightweight path for hosts that don't need the
// full Config/plugin machinery.
func (e *Engine) RegisterCommand(c *Command) {
	e.commands.Register(c)
}
