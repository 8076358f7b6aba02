// Package searchtest provides an in-memory fake of searchclient.Client for
// unit tests, modeled on the teacher's habit of hand-rolled fakes in
// _test.go files, but promoted to its own package since several of our
// packages share it.
package searchtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/munin/poi-pipeline/internal/searchclient"
)

// HitsFunc answers a single query pair with either hits or an error.
type HitsFunc func(pair searchclient.QueryPair) ([]searchclient.Hit, error)

// Client is a fake searchclient.Client driven by a HitsFunc, with call
// counting so tests can assert on batching behaviour (§8 scenario S6).
type Client struct {
	mu sync.Mutex

	Answer      HitsFunc
	Admins      []*poi.Admin
	FailNextN   int // Multisearch fails outright this many times before succeeding
	Calls       int
	BatchSizes  []int
	Pushed      map[string][]*poi.EnrichedPoi
}

// New builds a fake client that answers every query with no hits, unless
// overridden via Answer.
func New() *Client {
	return &Client{
		Answer: func(searchclient.QueryPair) ([]searchclient.Hit, error) { return nil, nil },
		Pushed: make(map[string][]*poi.EnrichedPoi),
	}
}

func (c *Client) Multisearch(_ context.Context, pairs []searchclient.QueryPair) ([]searchclient.Result, error) {
	c.mu.Lock()
	c.Calls++
	c.BatchSizes = append(c.BatchSizes, len(pairs))
	if c.FailNextN > 0 {
		c.FailNextN--
		c.mu.Unlock()
		return nil, errTransient
	}
	c.mu.Unlock()

	results := make([]searchclient.Result, len(pairs))
	for i, p := range pairs {
		hits, err := c.Answer(p)
		results[i] = searchclient.Result{Hits: hits, Err: err}
	}
	return results, nil
}

func (c *Client) DrainAdmins(context.Context) ([]*poi.Admin, error) {
	return c.Admins, nil
}

func (c *Client) Push(_ context.Context, dataset string, p *poi.EnrichedPoi) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pushed[dataset] = append(c.Pushed[dataset], p)
	return nil
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errTransient = fakeError("searchtest: simulated transient failure")

// RawHit builds a Hit with an arbitrary JSON-marshalable source.
func RawHit(v any) searchclient.Hit {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return searchclient.Hit{Source: b}
}
