package xsh

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

// placeholderSeq generates the opaque hash names the normalizer substitutes
// for quoted literals, signed numbers and brace groups — names whose
// second character is "_" are reserved so they never collide with a
// user-chosen variable.
var placeholderSeq int64

func nextPlaceholder(prefix string) string {
	n := atomic.AddInt64(&placeholderSeq, 1)
	return fmt.Sprintf("_%s%d", prefix, n)
}

var (
	reWhitespaceRun = regexp.MustCompile(`\s+`)
	reMathSpacing   = regexp.MustCompile(`\s*(===|!==|==|!=|>=|<=|&&|\|\||\?\?|[><+*/%|,:])\s*`)
	reBraceOpen     = regexp.MustCompile(`([\[({])\s+`)
	reBraceClose    = regexp.MustCompile(`\s+([\])}])`)
	reQuoted        = regexp.MustCompile(`"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'|` + "`" + `(?:\\.|[^` + "`" + `\\])*` + "`")
	reSignedNumber  = regexp.MustCompile(`(^|[\s(\[{,:;|&?+\-*/%<>=])(-\d+(?:\.\d+)?)($|[\s)\]},:;|&?+\-*/%<>=!])`)
	reInnermostParen = regexp.MustCompile(`\(([^()\[\]{}]*)\)`)
	reInnermostBrack = regexp.MustCompile(`\[([^()\[\]{}]*)\]`)
	reInnermostBrace = regexp.MustCompile(`\{([^()\[\]{}]*)\}`)
)

// unescapeQuoted strips the quote delimiters and collapses backslash
// escapes, matching the extraction step of order -1000.
func unescapeQuoted(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// registerNormalizerRules installs the seven fixed-order rewrite rules
// into the parse category: a text-rewriting chain rather than a
// scanner-driven tokenizer, because the normalizer rewrites in place
// rather than emitting a token stream.
func registerNormalizerRules(reg *RuleRegistry) {
	reg.Register(CategoryParse, &Rule{Name: "brackets", Order: -1000})
	// Each normalizer rule is driven directly by Normalize below rather
	// than through the generic RuleCallback signature: every rule needs
	// access to the mutable scope and the in-progress string, which the
	// single-value RuleContext isn't shaped for. The Rule entries above
	// exist so iterForType/Iter still reports the normalizer's ladder to
	// introspecting callers and so plugins can see the fixed stages.
	reg.Register(CategoryParse, &Rule{Name: "trim-borders", Order: -900})
	reg.Register(CategoryParse, &Rule{Name: "collapse-spaces", Order: -800})
	reg.Register(CategoryParse, &Rule{Name: "trim-math", Order: -700})
	reg.Register(CategoryParse, &Rule{Name: "trim-braces", Order: -600})
	reg.Register(CategoryParse, &Rule{Name: "signed-numbers", Order: -500})
	reg.Register(CategoryParse, &Rule{Name: "brace-groups", Order: -400})
}

// Normalize runs the fixed seven-stage pre-pass: extract quoted literals,
// trim borders, collapse whitespace, trim around math operators and
// braces, extract signed numbers, then repeatedly fold innermost brace
// groups into placeholders until none remain.
func Normalize(input string, scope *Scope) string {
	s := extractQuoted(input, scope)
	s = strings.TrimSpace(s)
	s = reWhitespaceRun.ReplaceAllString(s, " ")
	s = reMathSpacing.ReplaceAllString(s, "$1")
	s = reBraceOpen.ReplaceAllString(s, "$1")
	s = reBraceClose.ReplaceAllString(s, "$1")
	s = extractSignedNumbers(s, scope)
	s = extractBraceGroups(s, scope)
	return s
}

func extractQuoted(input string, scope *Scope) string {
	return reQuoted.ReplaceAllStringFunc(input, func(match string) string {
		name := nextPlaceholder("q")
		scope.SetVar([]string{name}, Str(unescapeQuoted(match)))
		return "$" + name
	})
}

func extractSignedNumbers(input string, scope *Scope) string {
	for {
		loc := reSignedNumber.FindStringSubmatchIndex(input)
		if loc == nil {
			return input
		}
		numStart, numEnd := loc[4], loc[5]
		numText := input[numStart:numEnd]
		name := nextPlaceholder("n")
		if strings.Contains(numText, ".") {
			f, _ := strconv.ParseFloat(numText, 64)
			scope.SetVar([]string{name}, Float(f))
		} else {
			i, _ := strconv.ParseInt(numText, 10, 64)
			scope.SetVar([]string{name}, Int(i))
		}
		input = input[:numStart] + "$" + name + input[numEnd:]
	}
}

// extractBraceGroups repeatedly substitutes the innermost "(...)", "[...]"
// or "{...}" with a "$$hash" placeholder, storing the full original
// substring (including its braces) so the converter can re-enter exec on
// it verbatim.
func extractBraceGroups(input string, scope *Scope) string {
	for {
		loc := findInnermostBraceGroup(input)
		if loc == nil {
			return input
		}
		full := input[loc[0]:loc[1]]
		name := nextPlaceholder("b")
		scope.SetVar([]string{name}, Str(full))
		input = input[:loc[0]] + "$$" + name + input[loc[1]:]
	}
}

func findInnermostBraceGroup(input string) []int {
	if m := reInnermostParen.FindStringIndex(input); m != nil {
		return m
	}
	if m := reInnermostBrack.FindStringIndex(input); m != nil {
		return m
	}
	if m := reInnermostBrace.FindStringIndex(input); m != nil {
		return m
	}
	return nil
}
