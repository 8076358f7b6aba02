// Package sink implements the two bounded output channels the enrichment
// pipeline fans enriched POIs out to (searchable / hidden), per spec §4.E
// and §5 "Shared resources". The close/drain lifecycle generalizes the
// teacher's consumer-group worker stop-channel pattern into a fan-out sink.
package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/munin/poi-pipeline/internal/searchclient"
)

// DefaultCapacity is the bounded channel capacity spec §5 calls out
// ("Sink channels are bounded, capacity ~10,000").
const DefaultCapacity = 10000

// Sink is one named output destination. Send blocks (backpressure) when the
// channel is full; Close signals the consumer side that no more POIs are
// coming.
type Sink struct {
	Dataset string
	ch      chan *poi.EnrichedPoi
}

// New returns a Sink targeting dataset with the given bounded capacity.
func New(dataset string, capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sink{Dataset: dataset, ch: make(chan *poi.EnrichedPoi, capacity)}
}

// Send forwards p, blocking if the channel is full, until ctx is canceled.
func (s *Sink) Send(ctx context.Context, p *poi.EnrichedPoi) error {
	select {
	case s.ch <- p:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals the consumer side that no more sends will happen. The
// pipeline stage calls this once after its input stream and all in-flight
// chunks have drained (spec §4.E "Termination").
func (s *Sink) Close() {
	close(s.ch)
}

// C exposes the receive side for a consumer to range over.
func (s *Sink) C() <-chan *poi.EnrichedPoi {
	return s.ch
}

// Drain reads p from the sink until it is closed, pushing each into client
// under s.Dataset. It is the "downstream indexer" spec §1 treats as an
// external collaborator for everything except the Push call itself, which
// is the contract the core pipeline relies on (spec §6 "Output — search
// backend").
func (s *Sink) Drain(ctx context.Context, logger *zap.Logger, client searchclient.Client) error {
	count := 0
	for {
		select {
		case p, ok := <-s.ch:
			if !ok {
				logger.Info("sink drained", zap.String("dataset", s.Dataset), zap.Int("count", count))
				return nil
			}
			if err := client.Push(ctx, s.Dataset, p); err != nil {
				return fmt.Errorf("sink %s: push %s: %w", s.Dataset, p.ID, err)
			}
			count++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
