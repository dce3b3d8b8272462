package xsh

import "strings"

// OperatorRule names one entry of the splitter's fixed precedence list —
// lowest-priority operators (those that bind first, appearing nearest the
// tree root) come first.
type OperatorRule struct {
	Key   string
	Order int
}

// SplitOperators is the fixed, ordered operator list the command splitter
// walks. Lower Order binds first (sits nearer the root of the resulting
// tree) — the language surface's precedence table, restricted to the
// operators the splitter (as opposed to the math evaluator) is
// responsible for.
var SplitOperators = []OperatorRule{
	{Key: ";", Order: 0},
	{Key: "||", Order: 1},
	{Key: "&&", Order: 2},
	{Key: "??", Order: 3},
	{Key: "|", Order: 4},
	{Key: ">>", Order: 5},
	{Key: " ", Order: 6},
}

// SubNode is one node of the subcommand tree: a leaf string, or an
// internal node tagged with the operator that produced it and an ordered
// list of children.
type SubNode struct {
	Leaf     string
	IsLeaf   bool
	Operator string
	Children []*SubNode
}

func leafNode(s string) *SubNode { return &SubNode{Leaf: s, IsLeaf: true} }

// SplitCommand recursively splits a normalized string by operator
// priority: an operator-table-driven recursive descent, but textual
// rather than token-driven — normalization has already hidden every
// nested group behind a placeholder, so splitting on a bare operator
// substring is safe.
func SplitCommand(s string, opIndex int) *SubNode {
	if opIndex >= len(SplitOperators) {
		return leafNode(s)
	}
	op := SplitOperators[opIndex]
	parts := splitTopLevel(s, op.Key)
	if len(parts) <= 1 {
		return SplitCommand(s, opIndex+1)
	}
	children := make([]*SubNode, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		children = append(children, SplitCommand(trimmed, opIndex+1))
	}
	if len(children) == 1 {
		return children[0]
	}
	return &SubNode{Operator: op.Key, Children: children}
}

// splitTopLevel splits s on every occurrence of key, except that a single
// space never splits inside a run already consumed by a longer operator —
// callers only reach the " " rule once every longer operator has already
// been tried and found absent, so a naive substring split is sufficient
// because placeholders carry no raw operator characters.
func splitTopLevel(s, key string) []string {
	if key == " " {
		return strings.Fields(s)
	}
	return strings.Split(s, key)
}
