// Package pipeline implements component E: it chunks a stream of raw POIs,
// drives each chunk through the locator and batch driver, and fans the
// results out to the searchable/hidden sinks with bounded concurrency.
// Grounded on original_source/src/sources/openmaptiles/mod.rs::fetch_and_locate_pois
// (chunks(1500).buffer_unordered(concurrent_blocks)) and on the teacher's
// bounded-fan-out-then-wait worker manager shape, here built on
// golang.org/x/sync/errgroup instead of a raw WaitGroup since each chunk
// task can fail.
package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/munin/poi-pipeline/internal/lazystep"
	"github.com/munin/poi-pipeline/internal/locator"
	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/munin/poi-pipeline/internal/searchclient"
	"github.com/munin/poi-pipeline/internal/sink"
)

// DefaultChunkSize is the target POIs-per-chunk spec §4.E calls out.
const DefaultChunkSize = 1500

// Options configures a Stage.
type Options struct {
	ChunkSize        int // default DefaultChunkSize
	ConcurrentBlocks int // cap on chunks processed in parallel; default 1
	MaxQueryBatchSize int
	LogInterval       int64 // log every N processed POIs; 0 disables
}

// Stage is the streaming enrichment pipeline stage.
type Stage struct {
	locator    *locator.Locator
	client     searchclient.Client
	logger     *zap.Logger
	searchable *sink.Sink
	hidden     *sink.Sink
	opts       Options

	processed atomic.Int64
}

// New returns a Stage wired to loc for enrichment, client for batched
// reverse-geocode round-trips, and the two fan-out sinks.
func New(loc *locator.Locator, client searchclient.Client, logger *zap.Logger, searchable, hidden *sink.Sink, opts Options) *Stage {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ConcurrentBlocks <= 0 {
		opts.ConcurrentBlocks = 1
	}
	return &Stage{
		locator:    loc,
		client:     client,
		logger:     logger,
		searchable: searchable,
		hidden:     hidden,
		opts:       opts,
	}
}

// Run consumes input to completion, chunking it and driving each chunk
// through the locator and batch driver, forwarding every resolved
// EnrichedPoi to its sink. It closes both sinks before returning, whether it
// succeeds or fails (spec §4.E "Termination").
//
// Completion order across chunks is not preserved; within a chunk, POIs are
// indexed into the batch driver in input order (spec §5 "Ordering
// guarantees").
func (s *Stage) Run(ctx context.Context, input <-chan poi.PoiInput) error {
	defer s.searchable.Close()
	defer s.hidden.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ConcurrentBlocks)

	chunk := make([]poi.PoiInput, 0, s.opts.ChunkSize)
	flush := func() {
		if len(chunk) == 0 {
			return
		}
		batch := chunk
		chunk = make([]poi.PoiInput, 0, s.opts.ChunkSize)
		g.Go(func() error {
			return s.processChunk(ctx, batch)
		})
	}

readLoop:
	for {
		select {
		case p, ok := <-input:
			if !ok {
				break readLoop
			}
			chunk = append(chunk, p)
			if len(chunk) >= s.opts.ChunkSize {
				flush()
			}
		case <-ctx.Done():
			return g.Wait()
		}
	}
	flush()

	return g.Wait()
}

// processChunk runs the locator synchronously over one chunk to build the
// LazyStep vector (spec §4.E step 2), drives it to completion (§4.C), then
// forwards every non-dropped EnrichedPoi to its sink.
func (s *Stage) processChunk(ctx context.Context, pois []poi.PoiInput) error {
	steps := make([]lazystep.LazyStep[*poi.EnrichedPoi], len(pois))
	for i, p := range pois {
		steps[i] = s.locator.Locate(p)
	}

	results, err := lazystep.Drive(ctx, s.logger, s.client, steps, s.opts.MaxQueryBatchSize)
	if err != nil {
		return err
	}

	for _, enriched := range results {
		if enriched == nil {
			continue
		}
		if err := s.dispatch(ctx, enriched); err != nil {
			return err
		}
		s.bumpCounter()
	}
	return nil
}

func (s *Stage) dispatch(ctx context.Context, p *poi.EnrichedPoi) error {
	if p.Searchable {
		return s.searchable.Send(ctx, p)
	}
	return s.hidden.Send(ctx, p)
}

func (s *Stage) bumpCounter() {
	n := s.processed.Add(1)
	if s.opts.LogInterval > 0 && n%s.opts.LogInterval == 0 && s.logger != nil {
		s.logger.Info("pois indexed", zap.Int64("count", n))
	}
}
