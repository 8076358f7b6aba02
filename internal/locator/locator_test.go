package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munin/poi-pipeline/internal/geofinder"
	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/munin/poi-pipeline/internal/searchclient"
)

func cityAdmin(name, country string) *poi.Admin {
	return &poi.Admin{
		ID:      "admin:" + name,
		Level:   8,
		Name:    name,
		Country: country,
		Zone:    poi.ZoneCity,
		Boundary: poi.Polygon{
			{{Lon: -1, Lat: -1}, {Lon: 3, Lat: -1}, {Lon: 3, Lat: 3}, {Lon: -1, Lat: 3}, {Lon: -1, Lat: -1}},
		},
	}
}

func newGeofinderWith(admins ...*poi.Admin) *geofinder.AdminGeoFinder {
	gf := geofinder.New()
	for _, a := range admins {
		gf.Insert(a)
	}
	return gf
}

// S1: POI with OSM address tags resolves to a FullAddr with no reverse-geocode query.
func TestLocateWithAddressTagsBuildsFullAddrWithoutQuery(t *testing.T) {
	gf := newGeofinderWith(cityAdmin("bob's town", "FR"))
	loc := New(gf, Options{})

	p := poi.PoiInput{
		ID:         "osm:node:1",
		Coord:      poi.Coordinate{Lon: 1, Lat: 1},
		Name:       "Le nomade",
		Class:      "restaurant",
		MappingKey: "amenity",
		Subclass:   "restaurant",
		Tags:       map[string]string{"addr:housenumber": "7", "addr:street": "rue spontini"},
	}

	step := loc.Locate(p)
	_, pending := step.PendingRequest()
	assert.False(t, pending)

	v, ok := step.Value()
	require.True(t, ok)
	require.NotNil(t, v)

	addr, ok := v.Address.(poi.FullAddr)
	require.True(t, ok)
	assert.Equal(t, "7", addr.HouseNumber)
	assert.Equal(t, "rue spontini", addr.Street.Name)
	assert.Equal(t, "7 rue spontini (bob's town)", addr.Label)
	assert.True(t, v.Searchable)
}

// S2/S3: POI without address tags defers to a reverse-geocode query.
func TestLocateWithoutTagsReverseGeocodeHit(t *testing.T) {
	gf := newGeofinderWith(cityAdmin("bob's town", "FR"))
	loc := New(gf, Options{})

	p := poi.PoiInput{ID: "osm:node:2", Coord: poi.Coordinate{Lon: 1, Lat: 1}, Name: "Some shop", MappingKey: "shop", Subclass: "bakery"}
	step := loc.Locate(p)

	pair, pending := step.PendingRequest()
	require.True(t, pending)

	hitDoc := []byte(`{"type":"addr","id":"a1","name":"1234 test","label":"1234 test (bob's town)","house_number":"1234","street_name":"test"}`)
	resumed := step.Resume([]searchclient.Hit{{Source: hitDoc}})

	v, ok := resumed.Value()
	require.True(t, ok)
	addr, ok := v.Address.(poi.FullAddr)
	require.True(t, ok)
	assert.Equal(t, "1234 test (bob's town)", addr.Label)
	assert.NotNil(t, pair.Query)
}

func TestLocateReverseGeocodeEmptyHitsYieldsNoAddress(t *testing.T) {
	gf := newGeofinderWith(cityAdmin("bob's town", "FR"))
	loc := New(gf, Options{})

	p := poi.PoiInput{ID: "osm:node:3", Coord: poi.Coordinate{Lon: 1, Lat: 1}, Name: "Some shop"}
	step := loc.Locate(p)
	resumed := step.Resume(nil)

	v, ok := resumed.Value()
	require.True(t, ok)
	assert.Nil(t, v.Address)
}

// S4: hamlet (locality class) never issues a reverse-geocode query.
func TestLocateLocalitySkipsAddress(t *testing.T) {
	gf := newGeofinderWith(cityAdmin("bob's town", "FR"))
	loc := New(gf, Options{})

	p := poi.PoiInput{ID: "osm:node:4", Coord: poi.Coordinate{Lon: 1, Lat: 1}, Name: "Hamlet", Class: "locality"}
	step := loc.Locate(p)

	_, pending := step.PendingRequest()
	assert.False(t, pending)
	v, ok := step.Value()
	require.True(t, ok)
	assert.Nil(t, v.Address)
}

// S5: deny-listed POI routes to hidden (not searchable).
func TestLocateDenyListedIsNotSearchable(t *testing.T) {
	gf := newGeofinderWith(cityAdmin("bob's town", "FR"))
	loc := New(gf, Options{Denylist: NewDenyList(DefaultDenyList)})

	p := poi.PoiInput{ID: "osm:node:5", Coord: poi.Coordinate{Lon: 1, Lat: 1}, Name: "Stop A", MappingKey: "highway", Subclass: "bus_stop", Class: "locality"}
	step := loc.Locate(p)
	v, ok := step.Value()
	require.True(t, ok)
	assert.False(t, v.Searchable)
}

func TestLocateNoContainingAdminDropsPoi(t *testing.T) {
	gf := geofinder.New()
	loc := New(gf, Options{})

	p := poi.PoiInput{ID: "osm:node:6", Coord: poi.Coordinate{Lon: 50, Lat: 50}, Name: "Nowhere"}
	step := loc.Locate(p)
	v, ok := step.Value()
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestLocateSkipReverseSkipsQuery(t *testing.T) {
	gf := newGeofinderWith(cityAdmin("bob's town", "FR"))
	loc := New(gf, Options{SkipReverse: true})

	p := poi.PoiInput{ID: "osm:node:7", Coord: poi.Coordinate{Lon: 1, Lat: 1}, Name: "Some shop"}
	step := loc.Locate(p)

	_, pending := step.PendingRequest()
	assert.False(t, pending)
	v, ok := step.Value()
	require.True(t, ok)
	assert.Nil(t, v.Address)
}

func TestDenyListEmptyNameNeverSearchable(t *testing.T) {
	d := NewDenyList(DefaultDenyList)
	assert.False(t, d.IsSearchable("", "amenity", "cafe"))
}

func TestDenyListMatchesPair(t *testing.T) {
	d := NewDenyList(DefaultDenyList)
	assert.False(t, d.IsSearchable("Stop A", "highway", "bus_stop"))
	assert.True(t, d.IsSearchable("Stop A", "highway", "primary"))
}
