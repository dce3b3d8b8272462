package xsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommandSequenceBindsLowestAtRoot(t *testing.T) {
	tree := SplitCommand("a;b;c", 0)
	assert.Equal(t, ";", tree.Operator)
	assert.Len(t, tree.Children, 3)
}

func TestSplitCommandPipeNestsUnderFail(t *testing.T) {
	tree := SplitCommand("a||b|c", 0)
	assert.Equal(t, "||", tree.Operator)
	assert.Len(t, tree.Children, 2)
	second := tree.Children[1]
	assert.Equal(t, "|", second.Operator)
}

func TestSplitCommandSingleTokenIsLeaf(t *testing.T) {
	tree := SplitCommand("foo", 0)
	assert.True(t, tree.IsLeaf)
	assert.Equal(t, "foo", tree.Leaf)
}

func TestSplitCommandSpaceSplitsApplication(t *testing.T) {
	tree := SplitCommand("concat a b", 0)
	assert.Equal(t, " ", tree.Operator)
	assert.Len(t, tree.Children, 3)
}
