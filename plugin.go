package xsh

// Config is the host-supplied configuration shape for setConfig({ plugins?,
// commands?, rules? }): a list of nested plugins installed first
// (recursively), then this Config's own rules and commands, expanded into
// the five rule categories plus a nested-plugin list.
type Config struct {
	Plugins       []Config
	Commands      []*Command
	ParseRules    []*Rule
	ConvertRules  []*Rule
	MathRules     []*Rule
	CommandRules  []*Rule
	TemplateRules []*Rule
}

// Plugin returns the engine's built-in core configuration: the normalizer
// rules, the math operator table, and the template directives. Command
// registration happens separately via RegisterBuiltins because commands
// need a *CommandRegistry, not a Config, to compile their positional
// index.
func Plugin() Config {
	reg := NewRuleRegistry()
	registerNormalizerRules(reg)
	registerMathRules(reg)
	registerTemplateRules(reg)
	return Config{
		ParseRules:    reg.Iter(CategoryParse),
		MathRules:     reg.Iter(CategoryMath),
		TemplateRules: reg.Iter(CategoryTemplate),
	}
}
