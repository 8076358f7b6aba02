// Package lazystep implements LazyStep[T], a deferred computation that may
// need zero or more batched round-trips to the search backend to produce a
// T, and the batch driver that advances many LazyStep values to completion
// together.
//
// Grounded on the original fafnir pipeline's LazyEs<'p, T> (lazy_es.rs):
// the same Value/NeedQuery split, the same then-by-recursive-rewrap
// composition, the same batch_make_progress_until_value driver loop,
// translated from a boxed FnOnce closure to a Go closure of the same shape.
package lazystep

import (
	"encoding/json"
	"sync/atomic"

	"github.com/munin/poi-pipeline/internal/searchclient"
)

// Resume turns the hits returned for a Pending step's query into the next
// LazyStep in the chain.
type Resume[T any] func(hits []searchclient.Hit) LazyStep[T]

// pending holds the state of a not-yet-ready step. Shared via pointer so
// that Then can rewrap it without copying, and guarded by a used flag so
// that invoking the resume twice panics instead of silently double-running
// side effects.
type pending[T any] struct {
	header searchclient.QueryPair
	resume Resume[T]
	used   atomic.Bool
}

// LazyStep is a two-state deferred computation: Ready with a value, or
// Pending a single outstanding (header, query) pair. The zero value is not
// meaningful; construct with Ready or Need.
type LazyStep[T any] struct {
	ready   bool
	value   T
	pending *pending[T]
}

// Ready wraps an immediate value.
func Ready[T any](v T) LazyStep[T] {
	return LazyStep[T]{ready: true, value: v}
}

// Need declares a pending query and the continuation that turns its hits
// into the next step. header and query are the two JSON documents a
// multi-search batch sends for this entry.
func Need[T any](header, query json.RawMessage, resume Resume[T]) LazyStep[T] {
	return LazyStep[T]{
		pending: &pending[T]{
			header: searchclient.QueryPair{Header: header, Query: query},
			resume: resume,
		},
	}
}

// Value returns the value and true if this step is Ready, else the zero
// value and false.
func (s LazyStep[T]) Value() (T, bool) {
	if s.ready {
		return s.value, true
	}
	var zero T
	return zero, false
}

// PendingRequest exposes the outstanding request without consuming it.
func (s LazyStep[T]) PendingRequest() (searchclient.QueryPair, bool) {
	if s.pending == nil {
		return searchclient.QueryPair{}, false
	}
	return s.pending.header, true
}

// Resume advances a Pending step with the hits answering its query,
// producing the next LazyStep (Ready or freshly Pending). Panics if called
// on a Ready step or more than once on the same Pending value — the single-
// use invariant the spec requires of resume.
func (s LazyStep[T]) Resume(hits []searchclient.Hit) LazyStep[T] {
	if s.pending == nil {
		panic("lazystep: Resume called on a Ready step")
	}
	if !s.pending.used.CompareAndSwap(false, true) {
		panic("lazystep: resume invoked more than once on the same Pending step")
	}
	return s.pending.resume(hits)
}

// Map applies a pure transformation once the step completes. Defined as
// then(x => Ready(f(x))), matching the spec's required equivalence.
func Map[T, U any](s LazyStep[T], f func(T) U) LazyStep[U] {
	return Then(s, func(v T) LazyStep[U] {
		return Ready(f(v))
	})
}

// Then chains another, possibly-deferred, computation onto s. The combined
// step's pending query is whichever of s's is outstanding; once s resolves,
// f runs and its own LazyStep is spliced in. Associative by construction:
// the recursion rewraps exactly the same way regardless of how the chain is
// parenthesized.
func Then[T, U any](s LazyStep[T], f func(T) LazyStep[U]) LazyStep[U] {
	if v, ok := s.Value(); ok {
		return f(v)
	}
	pair, _ := s.PendingRequest()
	return Need[U](pair.Header, pair.Query, func(hits []searchclient.Hit) LazyStep[U] {
		return Then(s.Resume(hits), f)
	})
}
