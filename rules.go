package xsh

import (
	"regexp"
	"sort"
	"sync"
)

// RuleCategory partitions the rule registry: normalizer rules, converter
// rungs, math operators, command operators and template directives each
// live in their own ordered list.
type RuleCategory string

const (
	CategoryParse    RuleCategory = "parse"
	CategoryConvert  RuleCategory = "convert"
	CategoryMath     RuleCategory = "math"
	CategoryCommand  RuleCategory = "command"
	CategoryTemplate RuleCategory = "template"
)

// RuleMeta carries the template-type filter consumed by iterForType, plus
// whatever cosmetic tag a rule wants to expose (used by math/command rules
// to label the operator token they match).
type RuleMeta struct {
	Types []string
	Token string
}

// RuleCallback is the evaluator a rule runs once matched, returning
// continueLadder to defer to the next matching rule (or the fixed
// ladder). Suspension is handled uniformly by wrapping a whole entry
// point in Go (ExecAsync, ParseTemplateAsync) rather than by a
// per-rule async variant, so there is no separate async callback shape.
type RuleCallback func(ctx *RuleContext) (Value, error)

// RuleContext is what every rule callback receives: enough of the
// surrounding evaluation state to do its job without a God object.
type RuleContext struct {
	Engine   *Engine
	Scope    *Scope
	Rule     *Rule
	Text     string
	Operands []Value
	Operand1 Value
	Operand2 Value
	Extra    map[string]any
}

// Rule is one entry in the registry: a name, an optional regexp/key the
// dispatcher matches against, a callback, and the Order that determines
// its position in the ladder or chain it belongs to, generalized from a
// single flat function table into N categorized, ordered rule tables.
type Rule struct {
	Name          string
	Key           string
	Regexp        *regexp.Regexp
	Callback      RuleCallback
	Meta          RuleMeta
	Order         int
}

// RuleRegistry is the thread-safe, category-partitioned, order-sorted rule
// table shared by the normalizer, converter, math evaluator, command
// operators and template engine.
type RuleRegistry struct {
	mu    sync.RWMutex
	rules map[RuleCategory][]*Rule
}

func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{rules: make(map[RuleCategory][]*Rule)}
}

// Register appends rules to a category and re-sorts it by Order ascending,
// stable so that rules sharing an Order keep their registration sequence.
func (r *RuleRegistry) Register(category RuleCategory, rules ...*Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[category] = append(r.rules[category], rules...)
	list := r.rules[category]
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
}

// Iter returns a snapshot of a category's rules in Order.
func (r *RuleRegistry) Iter(category RuleCategory) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Rule, len(r.rules[category]))
	copy(out, r.rules[category])
	return out
}

// IterForType filters Iter's result down to rules whose Meta.Types is
// absent (applies to every template type) or contains typ.
func (r *RuleRegistry) IterForType(category RuleCategory, typ string) []*Rule {
	all := r.Iter(category)
	out := make([]*Rule, 0, len(all))
	for _, rule := range all {
		if len(rule.Meta.Types) == 0 {
			out = append(out, rule)
			continue
		}
		for _, t := range rule.Meta.Types {
			if t == typ {
				out = append(out, rule)
				break
			}
		}
	}
	return out
}

// Clear empties every category, leaving a pristine registry with none of
// the engine's built-in Plugin() rules.
func (r *RuleRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[RuleCategory][]*Rule)
}

// FlattenConfigs flattens a plugin list recursively — each Config may
// itself nest further plugins via its Plugins field — then appends the
// caller's own Config last, so nested plugins install before the
// caller's own rules.
func FlattenConfigs(own Config) []Config {
	var flat []Config
	for _, p := range own.Plugins {
		flat = append(flat, FlattenConfigs(p)...)
	}
	flat = append(flat, own)
	return flat
}

// runRules walks category's rules in Order and invokes the Callback of
// the first one whose Regexp (or, absent a Regexp, exact Key) matches
// text. A Callback that returns continueLadder is skipped in favor of
// the next matching rule, letting a host chain several rules over the
// same category. handled is false when no rule matched, so the caller's
// own fixed dispatch logic runs instead.
func (e *Engine) runRules(category RuleCategory, text string, operands []Value, scope *Scope) (Value, bool, error) {
	for _, rule := range e.rules.Iter(category) {
		if rule.Callback == nil {
			continue
		}
		if rule.Regexp != nil {
			if !rule.Regexp.MatchString(text) {
				continue
			}
		} else if rule.Key != "" && rule.Key != text {
			continue
		}
		ctx := &RuleContext{Engine: e, Scope: scope, Rule: rule, Text: text, Operands: operands}
		if len(operands) > 0 {
			ctx.Operand1 = operands[0]
		}
		if len(operands) > 1 {
			ctx.Operand2 = operands[1]
		}
		v, err := rule.Callback(ctx)
		if err == continueLadder {
			continue
		}
		return v, true, err
	}
	return Undefined(), false, nil
}

// InstallConfig registers every rule category carried by cfg. Command
// descriptors are not handled here — the Engine registers those on its
// CommandRegistry so dispatch stays in one place.
func (r *RuleRegistry) InstallConfig(cfg Config) {
	if len(cfg.ParseRules) > 0 {
		r.Register(CategoryParse, cfg.ParseRules...)
	}
	if len(cfg.ConvertRules) > 0 {
		r.Register(CategoryConvert, cfg.ConvertRules...)
	}
	if len(cfg.MathRules) > 0 {
		r.Register(CategoryMath, cfg.MathRules...)
	}
	if len(cfg.CommandRules) > 0 {
		r.Register(CategoryCommand, cfg.CommandRules...)
	}
	if len(cfg.TemplateRules) > 0 {
		r.Register(CategoryTemplate, cfg.TemplateRules...)
	}
}
