package xsh

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestValueTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"undefined", Undefined(), false},
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"empty string", Str(""), false},
		{"nonempty string", Str("a"), true},
		{"empty seq", SeqOf(nil), false},
		{"nonempty seq", SeqOf([]Value{Int(1)}), true},
		{"func", Fn(&FuncValue{Name: "f"}), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.v.Truthy())
		})
	}
}

func TestValueEqualLooseVsStrict(t *testing.T) {
	assert.True(t, Null().Equal(Undefined(), false))
	assert.False(t, Null().Equal(Undefined(), true))
	assert.True(t, Int(1).Equal(Str("1"), false))
	assert.False(t, Int(1).Equal(Str("1"), true))
	assert.True(t, Int(1).Equal(Int(1), true))
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", Int(2))
	m.Set("a", Int(1))
	m.Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v.Int())
}

func TestValueStringRendersIntegralFloatsWithoutTrailingZeroDrift(t *testing.T) {
	assert.Equal(t, "4.0", Float(4).String())
	assert.Equal(t, "4", Int(4).String())
}

func TestFromInterfaceRoundTrip(t *testing.T) {
	v := FromInterface(map[string]any{"a": []any{1.0, "x", nil}})
	assert.Equal(t, KindMap, v.Kind())
	seq, _ := v.Map().Get("a")
	assert.Equal(t, KindSeq, seq.Kind())
	assert.Equal(t, 3, len(seq.Seq()))
}

// TestValueInterfaceRoundTripsStructurally diffs the nested any-tree
// produced by Interface() against the original, the shape go-cmp is built
// for (assert.Equal's reflect.DeepEqual also works here, but a nested
// map/slice mismatch is easier to spot from a cmp.Diff than a boolean).
func TestValueInterfaceRoundTripsStructurally(t *testing.T) {
	original := map[string]any{
		"name": "ada",
		"tags": []any{"x", int64(1), nil},
	}
	v := FromInterface(original)
	got := v.Interface()
	if diff := cmp.Diff(original, got); diff != "" {
		t.Errorf("Interface() round trip mismatch:\n%s", diff)
	}
}
