// Package httpclient is the concrete searchclient.Client: a thin HTTP
// transport over a multi-search-capable backend (NDJSON header/body request
// bodies, JSON response). Establishing this connection and the backend's
// index lifecycle are out of the core's scope (spec §1); this package is
// the adapter the core depends on only through the searchclient.Client
// interface. Built on valyala/fasthttp, the HTTP client already in this
// module's dependency graph via gofiber/fiber, rather than net/http.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/munin/poi-pipeline/internal/searchclient"
)

// Client is a searchclient.Client backed by one fasthttp.Client and a base
// URL. Safe for concurrent use (spec §5 "the search-backend client is
// reference-counted and thread-safe").
type Client struct {
	hc            *fasthttp.Client
	baseURL       string
	datasetPrefix string
	adminIndex    string
}

// New returns a Client targeting baseURL (e.g. "http://localhost:9200"),
// prefixing output index names with prefix (spec §6, default "munin") and
// reading admins from adminIndex.
func New(baseURL, prefix, adminIndex string) *Client {
	return &Client{
		hc:            &fasthttp.Client{},
		baseURL:       baseURL,
		datasetPrefix: prefix,
		adminIndex:    adminIndex,
	}
}

type msearchResponse struct {
	Responses []struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Error *struct {
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"responses"`
}

// Multisearch issues one NDJSON multi-search request carrying every pair as
// an alternating header/body line (spec §4.C step b).
func (c *Client) Multisearch(ctx context.Context, pairs []searchclient.QueryPair) ([]searchclient.Result, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	for _, p := range pairs {
		body = append(body, p.Header...)
		body = append(body, '\n')
		body = append(body, p.Query...)
		body = append(body, '\n')
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/_msearch")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-ndjson")
	req.SetBody(body)

	if err := c.hc.Do(req, resp); err != nil {
		return nil, fmt.Errorf("httpclient: msearch: %w", err)
	}
	if resp.StatusCode() >= 500 {
		return nil, fmt.Errorf("httpclient: msearch: backend returned %d", resp.StatusCode())
	}

	var parsed msearchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("httpclient: msearch: decode response: %w", err)
	}

	out := make([]searchclient.Result, len(parsed.Responses))
	for i, r := range parsed.Responses {
		if r.Error != nil {
			out[i] = searchclient.Result{Err: fmt.Errorf("httpclient: query %d: %s", i, r.Error.Reason)}
			continue
		}
		hits := make([]searchclient.Hit, len(r.Hits.Hits))
		for j, h := range r.Hits.Hits {
			hits[j] = searchclient.Hit{Source: h.Source}
		}
		out[i] = searchclient.Result{Hits: hits}
	}
	return out, nil
}

type adminDoc struct {
	ID       string     `json:"id"`
	Level    int        `json:"level"`
	Name     string     `json:"name"`
	Label    string     `json:"label"`
	ZipCodes []string   `json:"zip_codes"`
	Weight   float64    `json:"weight"`
	Lon      float64    `json:"lon"`
	Lat      float64    `json:"lat"`
	Country  string     `json:"country_code"`
	Zone     string     `json:"zone"`
	Boundary [][][2]float64 `json:"boundary"` // rings of [lon,lat] pairs
}

type searchHitsResponse struct {
	Hits struct {
		Hits []struct {
			Source adminDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// DrainAdmins reads admins from c.adminIndex, used to build the geofinder
// once at startup. It issues one search request with size=10000 and does not
// page or scroll, so at most the first 10000 admin documents are returned.
func (c *Client) DrainAdmins(ctx context.Context) ([]*poi.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/%s/_search?size=10000", c.baseURL, c.adminIndex))
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.hc.Do(req, resp); err != nil {
		return nil, fmt.Errorf("httpclient: drain admins: %w", err)
	}

	var parsed searchHitsResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("httpclient: drain admins: decode: %w", err)
	}

	admins := make([]*poi.Admin, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		admins = append(admins, h.Source.toAdmin())
	}
	return admins, nil
}

func (d adminDoc) toAdmin() *poi.Admin {
	var boundary poi.Polygon
	for _, ring := range d.Boundary {
		r := make(poi.Ring, len(ring))
		for i, pt := range ring {
			r[i] = poi.Coordinate{Lon: pt[0], Lat: pt[1]}
		}
		boundary = append(boundary, r)
	}
	return &poi.Admin{
		ID:       d.ID,
		Level:    d.Level,
		Name:     d.Name,
		Label:    d.Label,
		ZipCodes: d.ZipCodes,
		Weight:   d.Weight,
		Centroid: poi.Coordinate{Lon: d.Lon, Lat: d.Lat},
		Boundary: boundary,
		Country:  d.Country,
		Zone:     poi.ZoneKind(d.Zone),
	}
}

// enrichedPoiDoc is the document shape pushed for each POI.
type enrichedPoiDoc struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Lon          float64  `json:"lon"`
	Lat          float64  `json:"lat"`
	Class        string   `json:"class"`
	Subclass     string   `json:"subclass"`
	Label        string   `json:"label"`
	ZipCodes     []string `json:"zip_codes"`
	CountryCodes []string `json:"country_codes"`
	Searchable   bool     `json:"searchable"`
	AdminIDs     []string `json:"admin_ids"`
}

// Push writes one enriched POI to <prefix>_poi_<dataset>.
func (c *Client) Push(ctx context.Context, dataset string, p *poi.EnrichedPoi) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	adminIDs := make([]string, len(p.Admins))
	for i, a := range p.Admins {
		adminIDs[i] = a.ID
	}
	doc := enrichedPoiDoc{
		ID: p.ID, Name: p.Name, Lon: p.Coord.Lon, Lat: p.Coord.Lat,
		Class: p.Class, Subclass: p.Subclass, Label: p.Label,
		ZipCodes: p.ZipCodes, CountryCodes: p.CountryCodes,
		Searchable: p.Searchable, AdminIDs: adminIDs,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("httpclient: push: encode: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	index := fmt.Sprintf("%s_poi_%s", c.datasetPrefix, dataset)
	req.SetRequestURI(fmt.Sprintf("%s/%s/_doc/%s", c.baseURL, index, p.ID))
	req.Header.SetMethod(fasthttp.MethodPut)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.hc.Do(req, resp); err != nil {
		return fmt.Errorf("httpclient: push %s: %w", p.ID, err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("httpclient: push %s: backend returned %d", p.ID, resp.StatusCode())
	}
	return nil
}

var _ searchclient.Client = (*Client)(nil)
