package xsh

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ArgKind tags what a PositionalArg binds: a plain value slot, the
// implicit scope receiver, or the implicit mode accumulator.
type ArgKind uint8

const (
	ArgValue ArgKind = iota
	ArgScope
	ArgMode
)

// PositionalArg describes one declared parameter of a registered command
// produced by the positional-to-descriptor compilation step.
type PositionalArg struct {
	Name     string
	Kind     ArgKind
	Required bool
	Variadic bool
	Default  Value
}

// FlagBit is one entry of a command's short-flag table: the character a
// "-abc" run may contain, and the bit OR-combined into the mode value.
type FlagBit struct {
	Char   byte
	Bit    int64
	Target string // not read by the binder: every bit is combined into the command's ModeArg (or "mode")
}

// CommandFunc is what a registered command ultimately invokes: the bound
// values keyed by argument name, plus the variadic tail collected from
// plain tokens.
type CommandFunc func(scope *Scope, bound map[string]Value, tail []Value) (Value, error)

// Command is the full descriptor the registry compiles and the dispatcher
// walks: declared flags and a Fn callback, generalized with the richer
// positional/variadic/long-option binding protocol.
type Command struct {
	Name       string
	Positional []PositionalArg
	Flags      []FlagBit
	ModeArg    string
	Fn         CommandFunc

	namedIndex map[string]int // camelCase long-option name -> Positional index
	flagIndex  map[byte]FlagBit
}

func (c *Command) compile() {
	c.namedIndex = make(map[string]int, len(c.Positional))
	for i, p := range c.Positional {
		c.namedIndex[p.Name] = i
	}
	c.flagIndex = make(map[byte]FlagBit, len(c.Flags))
	for _, f := range c.Flags {
		c.flagIndex[f.Char] = f
	}
}

// CommandRegistry is the name -> Command table every converter rung 11 and
// every param-operator fold consults to decide "is this a callable name":
// a mutex-guarded map with Register/Lookup.
type CommandRegistry struct {
	mu   sync.RWMutex
	cmds map[string]*Command
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{cmds: make(map[string]*Command)}
}

func (r *CommandRegistry) Register(c *Command) {
	c.compile()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds[c.Name] = c
}

func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cmds[name]
	return c, ok
}

func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	return names
}

// suggest runs a fuzzy match over registered command names so a
// PropertyNotFoundError can carry a "did you mean" hint — cosmetic only,
// never changes the error's Kind.
func (r *CommandRegistry) suggest(name string) string {
	best := ""
	bestDist := -1
	for _, n := range r.Names() {
		d := fuzzy.LevenshteinDistance(name, n)
		if bestDist == -1 || d < bestDist {
			bestDist, best = d, n
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return best
	}
	return ""
}

// kebabToCamel converts "long-option" to "longOption", the binding rule
// applied to every "--name" token.
func kebabToCamel(s string) string {
	parts := strings.Split(s, "-")
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

// execState tracks the binder's progress across the token stream so the
// ordering rules ("no plain positional after a flag", "no flag after a
// variadic started collecting") can be enforced as violations occur.
type execState struct {
	sawFlag       bool
	variadicStart bool
	bound         map[string]Value
	tail          []Value
}

// ExecFn is the dispatch entry point. When native is non-nil it is invoked
// with args verbatim (the "foreign callable from $global" path); otherwise
// nameOrFn is resolved against the registry. A name the registry doesn't
// know falls through to any host-registered CategoryCommand rule before
// PropertyNotFound is raised, so a plugin can answer for names it never
// registered as a full Command (e.g. a wildcard or pattern-matched family).
func (e *Engine) ExecFn(nameOrFn string, args []Value, scope *Scope, native NativeFunc) (Value, error) {
	if native != nil {
		return native(args, scope)
	}
	cmd, ok := e.commands.Lookup(nameOrFn)
	if !ok {
		if v, handled, err := e.runRules(CategoryCommand, nameOrFn, args, scope); handled {
			return v, err
		}
		return Undefined(), &PropertyNotFoundError{
			Property:   nameOrFn,
			Context:    "command",
			Suggestion: e.commands.suggest(nameOrFn),
		}
	}
	return e.dispatch(cmd, args, scope)
}

func (e *Engine) dispatch(cmd *Command, args []Value, scope *Scope) (Value, error) {
	if len(cmd.Positional) == 0 {
		if len(args) > 0 {
			return Undefined(), &ArgumentsLengthInvalidError{Command: cmd.Name, Expected: "0", Got: len(args)}
		}
		return cmd.Fn(scope, nil, nil)
	}

	st := &execState{bound: make(map[string]Value)}
	plainPositions := plainPositionalIndexes(cmd)
	plainCursor := 0
	i := 0

	for i < len(args) {
		tok := args[i]

		if isFlagToken(tok) {
			if strings.HasPrefix(tok.Str(), "--") {
				consumed, err := bindLongOption(cmd, st, tok.Str()[2:], args[i+1:])
				if err != nil {
					return Undefined(), err
				}
				i += 1 + consumed
				continue
			}
			if err := bindShortFlags(cmd, st, tok.Str()[1:]); err != nil {
				return Undefined(), err
			}
			i++
			continue
		}

		if st.sawFlag {
			return Undefined(), &WrongArgumentPositionError{
				Command: cmd.Name,
				Reason:  "Required argument before optional argument, or in the variadic argument",
			}
		}

		if plainCursor >= len(plainPositions) {
			last := cmd.Positional[len(cmd.Positional)-1]
			if last.Kind == ArgValue && last.Variadic {
				st.variadicStart = true
				st.tail = append(st.tail, tok)
				i++
				continue
			}
			return Undefined(), &ArgumentsLengthInvalidError{Command: cmd.Name, Expected: "declared positional count", Got: len(args)}
		}

		desc := cmd.Positional[plainPositions[plainCursor]]
		if desc.Variadic {
			st.variadicStart = true
			st.tail = append(st.tail, tok)
			i++
			continue
		}
		st.bound[desc.Name] = tok
		plainCursor++
		i++
	}

	for _, desc := range cmd.Positional {
		if desc.Kind != ArgValue {
			continue
		}
		if desc.Variadic {
			if desc.Required && len(st.tail) == 0 {
				return Undefined(), &PropertyRequiredError{Command: cmd.Name, Argument: desc.Name}
			}
			continue
		}
		if _, ok := st.bound[desc.Name]; !ok {
			if desc.Required {
				return Undefined(), &PropertyRequiredError{Command: cmd.Name, Argument: desc.Name}
			}
			st.bound[desc.Name] = desc.Default
		}
	}

	if cmd.ModeArg != "" {
		if _, ok := st.bound[cmd.ModeArg]; !ok {
			st.bound[cmd.ModeArg] = Int(0)
		}
	}

	return cmd.Fn(scope, st.bound, st.tail)
}

// plainPositionalIndexes lists the indexes of positional descriptors that
// absorb plain (non-flag) tokens in order — skipping the implicit "scope"
// and non-trailing "mode" slots, which the binder fills implicitly.
func plainPositionalIndexes(cmd *Command) []int {
	var idxs []int
	for i, desc := range cmd.Positional {
		if desc.Kind == ArgScope {
			continue
		}
		if desc.Kind == ArgMode && i != len(cmd.Positional)-1 {
			continue
		}
		idxs = append(idxs, i)
	}
	return idxs
}

func isFlagToken(tok Value) bool {
	return tok.Kind() == KindString && strings.HasPrefix(tok.Str(), "-") && len(tok.Str()) >= 2
}

// bindLongOption binds a "--name" token. If the targeted descriptor is
// variadic, every subsequent non-flag token is collected into that
// descriptor's own slot (as a Seq) rather than into the command's trailing
// tail. Returns how many of rest were consumed.
func bindLongOption(cmd *Command, st *execState, name string, rest []Value) (int, error) {
	st.sawFlag = true
	key := kebabToCamel(name)
	idx, ok := cmd.namedIndex[key]
	if !ok {
		return 0, &PropertyNotFoundError{Property: "--" + name, Context: "long option", Suggestion: ""}
	}
	desc := cmd.Positional[idx]
	if desc.Variadic {
		if st.variadicStart {
			return 0, &WrongArgumentPositionError{Command: cmd.Name, Reason: "no flag may follow a started variadic argument"}
		}
		collected := make([]Value, 0, len(rest))
		consumed := 0
		for _, v := range rest {
			if isFlagToken(v) {
				break
			}
			collected = append(collected, v)
			consumed++
		}
		st.bound[key] = SeqOf(collected)
		return consumed, nil
	}
	if len(rest) == 0 || isFlagToken(rest[0]) {
		st.bound[key] = Bool(true)
		return 0, nil
	}
	st.bound[key] = rest[0]
	return 1, nil
}

func bindShortFlags(cmd *Command, st *execState, chars string) error {
	st.sawFlag = true
	if st.variadicStart {
		return &WrongArgumentPositionError{Command: cmd.Name, Reason: "no flag may follow a started variadic argument"}
	}
	target := cmd.ModeArg
	if target == "" {
		target = "mode"
	}
	acc, _ := st.bound[target]
	var bits int64
	if acc.Kind() == KindInt {
		bits = acc.Int()
	}
	for i := 0; i < len(chars); i++ {
		fb, ok := cmd.flagIndex[chars[i]]
		if !ok {
			return &PropertyNotFoundError{Property: "-" + string(chars[i]), Context: "short flag", Suggestion: ""}
		}
		bits |= fb.Bit
	}
	st.bound[target] = Int(bits)
	return nil
}
