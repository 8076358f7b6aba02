package lazystep

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/munin/poi-pipeline/internal/searchclient"
)

// backoffRetries and backoffDelay bound the exponential retry wrapped
// around each multi-search round-trip (spec §4.C): up to 6 attempts,
// starting at a 1s delay, growing multiplicatively.
const (
	backoffRetries = 6
	backoffDelay   = time.Second
)

// Drive advances every step in steps to Ready, issuing batched multi-search
// requests of at most maxBatchSize pairs at a time, and returns the
// extracted values in input order. The input slice is not mutated; Drive
// works on its own copy.
//
// Drive is single-tasked and serial: it is meant to be called once per
// chunk from the pipeline stage, which is itself what provides chunk-level
// parallelism (spec §4.E, §5).
func Drive[T any](ctx context.Context, logger *zap.Logger, client searchclient.Client, steps []LazyStep[T], maxBatchSize int) ([]T, error) {
	if maxBatchSize <= 0 {
		maxBatchSize = 1
	}
	working := make([]LazyStep[T], len(steps))
	copy(working, steps)

	for {
		idx, pairs := collectPending(working, maxBatchSize)
		if len(idx) == 0 {
			break
		}

		results, err := callWithBackoff(ctx, client, pairs)
		if err != nil {
			return nil, fmt.Errorf("lazystep: multisearch failed after retries: %w", err)
		}
		if len(results) != len(pairs) {
			return nil, fmt.Errorf("lazystep: multisearch returned %d results for %d pending queries", len(results), len(pairs))
		}

		errCount, hitCount := 0, 0
		for _, r := range results {
			if r.Err != nil {
				errCount++
			} else {
				hitCount++
			}
		}

		if errCount > 0 && errCount > hitCount {
			return nil, firstErr(results)
		}

		for i, r := range results {
			if r.Err != nil {
				if logger != nil {
					logger.Warn("lazystep: per-query search error, will retry next iteration", zap.Error(r.Err))
				}
				continue
			}
			working[idx[i]] = working[idx[i]].Resume(r.Hits)
		}
	}

	out := make([]T, len(working))
	for i, s := range working {
		v, ok := s.Value()
		if !ok {
			panic("lazystep: batch driver exited with an unfinished step")
		}
		out[i] = v
	}
	return out, nil
}

// collectPending gathers up to maxBatchSize (index, query-pair) entries
// from the not-yet-ready steps, in input order.
func collectPending[T any](steps []LazyStep[T], maxBatchSize int) ([]int, []searchclient.QueryPair) {
	idx := make([]int, 0, maxBatchSize)
	pairs := make([]searchclient.QueryPair, 0, maxBatchSize)
	for i, s := range steps {
		if len(idx) >= maxBatchSize {
			break
		}
		pair, ok := s.PendingRequest()
		if !ok {
			continue
		}
		idx = append(idx, i)
		pairs = append(pairs, pair)
	}
	return idx, pairs
}

func firstErr(results []searchclient.Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// callWithBackoff issues one multi-search call, retrying transient failures
// of the call itself (the whole request failing, e.g. a timeout or 5xx) with
// exponential backoff. Per-query errors embedded in a successful response are
// not retried here; Drive's own loop handles those by leaving the
// corresponding steps Pending for the next batch.
func callWithBackoff(ctx context.Context, client searchclient.Client, pairs []searchclient.QueryPair) ([]searchclient.Result, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffDelay
	b.Multiplier = 2
	bo := backoff.WithContext(backoff.WithMaxRetries(b, backoffRetries-1), ctx)

	var results []searchclient.Result
	op := func() error {
		var err error
		results, err = client.Multisearch(ctx, pairs)
		return err
	}

	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return results, nil
}
