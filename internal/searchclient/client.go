// Package searchclient defines the collaborator interface the core
// enrichment pipeline depends on: a search backend capable of draining the
// admin set and answering batched multi-search queries. Establishing the
// connection, index lifecycle management, and the concrete HTTP transport
// are out of scope for this package (spec §1); only the contract the
// pipeline relies on lives here, plus a small in-memory fake used by tests.
package searchclient

import (
	"context"
	"encoding/json"

	"github.com/munin/poi-pipeline/internal/poi"
)

// QueryPair is one (header, body) document pair as sent to a multi-search
// endpoint. Both are opaque JSON to this package; callers (the locator,
// reverse-geocode resume closures) are responsible for their shape.
type QueryPair struct {
	Header json.RawMessage
	Query  json.RawMessage
}

// Hit is a single search result's source document.
type Hit struct {
	Source json.RawMessage
}

// Result is one multi-search response slot: either a hit list or a
// per-query error object returned by the backend.
type Result struct {
	Hits []Hit
	Err  error
}

// Client is the search backend collaborator. Implementations are expected
// to be reference-counted and safe for concurrent use (spec §5); requests
// are multiplexed over whatever transport backs them.
type Client interface {
	// Multisearch issues one batched request carrying all of pairs and
	// returns one Result per pair, in the same order. A returned error means
	// the whole call failed (transient remote failure candidate for retry);
	// per-query failures are reported inside individual Results instead.
	Multisearch(ctx context.Context, pairs []QueryPair) ([]Result, error)

	// DrainAdmins streams the full admin set used to build the geofinder at
	// startup.
	DrainAdmins(ctx context.Context) ([]*poi.Admin, error)

	// Push writes one enriched POI into the index backing dataset. The two
	// logical destinations (searchable / hidden) are distinguished by
	// dataset name, not by method.
	Push(ctx context.Context, dataset string, p *poi.EnrichedPoi) error
}
