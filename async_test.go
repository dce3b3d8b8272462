package xsh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeferredResolveSettlesOnce(t *testing.T) {
	d := NewDeferred()
	d.Resolve(Int(1))
	d.Resolve(Int(2)) // second settle is a no-op
	v, err := d.Await()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), v.Int())
}

func TestDeferredOnSettleAfterResolve(t *testing.T) {
	d := Resolved(Str("x"))
	var got Value
	d.OnSettle(func(v Value, err error) {
		got = v
	})
	assert.Equal(t, "x", got.Str())
}

func TestDeferredOnSettleBeforeResolve(t *testing.T) {
	d := NewDeferred()
	done := make(chan struct{})
	var got Value
	d.OnSettle(func(v Value, err error) {
		got = v
		close(done)
	})
	d.Resolve(Int(42))
	<-done
	assert.Equal(t, int64(42), got.Int())
}

func TestDeferredReject(t *testing.T) {
	d := Rejected(errors.New("boom"))
	_, err := d.Await()
	assert.EqualError(t, err, "boom")
}

func TestAwaitAllMixedDeferredAndPlain(t *testing.T) {
	values := []Value{Int(1), DeferredValue(Resolved(Int(2))), Int(3)}
	resolved, err := AwaitAll(values)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, []int64{resolved[0].Int(), resolved[1].Int(), resolved[2].Int()})
}
