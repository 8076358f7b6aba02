package lazystep

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munin/poi-pipeline/internal/searchclient"
)

func needInt(n int) LazyStep[int] {
	header, _ := json.Marshal(map[string]int{"n": n})
	return Need[int](header, header, func(hits []searchclient.Hit) LazyStep[int] {
		return Ready(len(hits))
	})
}

func TestMapOnReadyEqualsValueThenMap(t *testing.T) {
	s := Ready(21)
	mapped := Map(s, func(x int) int { return x * 2 })

	v, ok := mapped.Value()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestMapEquivalentToThenReady(t *testing.T) {
	s := Ready(10)
	f := func(x int) int { return x + 1 }

	a := Map(s, f)
	b := Then(s, func(x int) LazyStep[int] { return Ready(f(x)) })

	av, _ := a.Value()
	bv, _ := b.Value()
	assert.Equal(t, av, bv)
}

func TestThenAssociative(t *testing.T) {
	f := func(x int) LazyStep[int] { return Ready(x + 1) }
	g := func(x int) LazyStep[int] { return Ready(x * 2) }

	left := Then(Then(needInt(3), f), g)
	right := Then(needInt(3), func(x int) LazyStep[int] { return Then(f(x), g) })

	leftResumed := left.Resume([]searchclient.Hit{{}, {}})
	rightResumed := right.Resume([]searchclient.Hit{{}, {}})

	lv, lok := leftResumed.Value()
	rv, rok := rightResumed.Value()
	require.True(t, lok)
	require.True(t, rok)
	assert.True(t, cmp.Equal(lv, rv))
}

func TestPendingExposesRequestWithoutConsuming(t *testing.T) {
	s := needInt(1)
	pair1, ok1 := s.PendingRequest()
	pair2, ok2 := s.PendingRequest()
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, pair1, pair2)
}

func TestResumeIsSingleUse(t *testing.T) {
	s := needInt(1)
	_ = s.Resume(nil)
	assert.Panics(t, func() {
		s.Resume(nil)
	})
}

func TestResumeOnReadyPanics(t *testing.T) {
	s := Ready(1)
	assert.Panics(t, func() {
		s.Resume(nil)
	})
}

func TestThenPreservesSinglePendingInvariant(t *testing.T) {
	// Chaining two deferred steps must still expose exactly one pending
	// query at a time: the second step's query only appears after the
	// first resolves.
	inner := needInt(1)
	chained := Then(inner, func(int) LazyStep[int] { return needInt(2) })

	pair, ok := chained.PendingRequest()
	require.True(t, ok)

	var got map[string]int
	require.NoError(t, json.Unmarshal(pair.Header, &got))
	assert.Equal(t, 1, got["n"])

	next := chained.Resume([]searchclient.Hit{{}})
	pair2, ok2 := next.PendingRequest()
	require.True(t, ok2)
	var got2 map[string]int
	require.NoError(t, json.Unmarshal(pair2.Header, &got2))
	assert.Equal(t, 2, got2["n"])
}
