// Package poi holds the data model shared by the enrichment pipeline:
// coordinates, administrative regions, raw and enriched points of interest,
// and postal addresses.
package poi

import "fmt"

// Coordinate is a (lon, lat) pair in WGS84. Zero value is the null island,
// which is a valid (if useless) coordinate.
type Coordinate struct {
	Lon float64
	Lat float64
}

// Valid reports whether c lies within the WGS84 coordinate range.
func (c Coordinate) Valid() bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lon, c.Lat)
}

// Ring is a closed sequence of coordinates; the first and last points are
// not required to be identical, the ring is implicitly closed.
type Ring []Coordinate

// Polygon is one outer ring followed by zero or more hole rings, same
// convention as GeoJSON. A nil Polygon means "no known boundary".
type Polygon []Ring

// BBox returns the axis-aligned bounding box of the polygon's outer ring.
func (p Polygon) BBox() (minLon, minLat, maxLon, maxLat float64, ok bool) {
	if len(p) == 0 || len(p[0]) == 0 {
		return 0, 0, 0, 0, false
	}
	outer := p[0]
	minLon, minLat = outer[0].Lon, outer[0].Lat
	maxLon, maxLat = outer[0].Lon, outer[0].Lat
	for _, c := range outer[1:] {
		if c.Lon < minLon {
			minLon = c.Lon
		}
		if c.Lon > maxLon {
			maxLon = c.Lon
		}
		if c.Lat < minLat {
			minLat = c.Lat
		}
		if c.Lat > maxLat {
			maxLat = c.Lat
		}
	}
	return minLon, minLat, maxLon, maxLat, true
}

// Contains reports whether pt lies within the polygon, honoring holes via
// the even-odd rule applied independently to each ring.
func (p Polygon) Contains(pt Coordinate) bool {
	if len(p) == 0 {
		return false
	}
	if !ringContains(p[0], pt) {
		return false
	}
	for _, hole := range p[1:] {
		if ringContains(hole, pt) {
			return false
		}
	}
	return true
}

// ringContains implements the standard ray-casting point-in-polygon test.
func ringContains(ring Ring, pt Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat

		intersects := (yi > pt.Lat) != (yj > pt.Lat) &&
			pt.Lon < (xj-xi)*(pt.Lat-yi)/(yj-yi)+xi
		if intersects {
			inside = !inside
		}
		j = i
	}
	return inside
}

// ZoneKind classifies an Admin within the hierarchy.
type ZoneKind string

const (
	ZoneCity    ZoneKind = "city"
	ZoneRegion  ZoneKind = "region"
	ZoneCountry ZoneKind = "country"
	ZoneSuburb  ZoneKind = "suburb"
	ZoneOther   ZoneKind = "other"
)

// Admin is an administrative region. Admins are loaded once at startup and
// shared read-only for the lifetime of a pipeline run: many POIs and the
// Geofinder hold the same *Admin. Go's garbage collector is the shared
// ownership mechanism here, there is no manual refcount to maintain.
type Admin struct {
	ID         string
	Level      int
	Name       string
	Label      string
	ZipCodes   []string
	Weight     float64
	Centroid   Coordinate
	Boundary   Polygon // nil if this admin has no known boundary
	Country    string  // ISO-3166 alpha-2
	Zone       ZoneKind
}

// IsCity reports whether this admin is the city-level entry of its stack.
// The locator uses the first city-kind admin of a stack for the city name in
// labels and for the weight of addresses built from OSM tags; an
// EnrichedPoi has no weight of its own besides PoiInput.Weight, which the
// locator leaves as the source set it.
func (a *Admin) IsCity() bool {
	return a.Zone == ZoneCity
}

// PoiInput is a raw POI as extracted from a source (relational OSM import or
// the gzipped feed). It is short-lived: built per source row and consumed by
// the locator.
type PoiInput struct {
	ID          string
	Coord       Coordinate
	Name        string
	Class       string
	Subclass    string
	MappingKey  string
	Tags        map[string]string
	Weight      *float64
}

// Street is an Address resolved to a street, without a precise house number
// (the result of a reverse-geocode hit that only has street-level precision,
// or an intermediate value built while composing a FullAddr).
type Street struct {
	ID           string
	Name         string
	Label        string
	Admins       []*Admin
	Weight       float64
	ZipCodes     []string
	Coord        Coordinate
	CountryCodes []string
}

// FullAddr is an Address with a house number, either synthesised from OSM
// address tags on the POI itself or returned by a reverse-geocode query.
type FullAddr struct {
	ID           string
	HouseNumber  string
	Name         string
	Street       Street
	Label        string
	Coord        Coordinate
	Weight       float64
	ZipCodes     []string
	CountryCodes []string
}

// Address is a tagged union: every POI carries at most one of these two
// shapes. Implemented as a marker interface rather than a struct with
// optional fields, matching the spec's variant contract.
type Address interface {
	isAddress()
	// AddrZipCodes returns the zip codes carried by this address, used when
	// the POI itself doesn't have its own.
	AddrZipCodes() []string
	// AddrCountryCodes returns the country codes carried by this address.
	AddrCountryCodes() []string
}

func (Street) isAddress()   {}
func (FullAddr) isAddress() {}

func (s Street) AddrZipCodes() []string     { return s.ZipCodes }
func (s Street) AddrCountryCodes() []string { return s.CountryCodes }

func (f FullAddr) AddrZipCodes() []string     { return f.ZipCodes }
func (f FullAddr) AddrCountryCodes() []string { return f.CountryCodes }

// EnrichedPoi is the pipeline's output record.
type EnrichedPoi struct {
	PoiInput

	Admins       []*Admin
	Label        string
	ZipCodes     []string
	CountryCodes []string
	Address      Address // nil if unresolved
	Searchable   bool
}
