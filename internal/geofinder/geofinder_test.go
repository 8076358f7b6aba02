package geofinder

import (
	"testing"

	"github.com/munin/poi-pipeline/internal/poi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minLon, minLat, maxLon, maxLat float64) Polygon {
	return Polygon{Ring{
		{Lon: minLon, Lat: minLat},
		{Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat},
		{Lon: minLon, Lat: maxLat},
	}}
}

func TestGeofinderOrdersMostSpecificFirst(t *testing.T) {
	country := &poi.Admin{ID: "country", Level: 2, Boundary: square(0, 0, 10, 10)}
	city := &poi.Admin{ID: "city", Level: 8, Boundary: square(1, 1, 2, 2)}

	g := New()
	g.Insert(country)
	g.Insert(city)

	got := g.Get(poi.Coordinate{Lon: 1.5, Lat: 1.5})
	require.Len(t, got, 2)
	assert.Equal(t, "city", got[0].ID)
	assert.Equal(t, "country", got[1].ID)
}

func TestGeofinderEmptyWhenOutside(t *testing.T) {
	g := New()
	g.Insert(&poi.Admin{ID: "a", Level: 2, Boundary: square(0, 0, 1, 1)})

	got := g.Get(poi.Coordinate{Lon: 50, Lat: 50})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGeofinderMissingBoundaryNeverReturned(t *testing.T) {
	g := New()
	g.Insert(&poi.Admin{ID: "no-boundary", Level: 2, Centroid: poi.Coordinate{Lon: 1, Lat: 1}})

	got := g.Get(poi.Coordinate{Lon: 1, Lat: 1})
	assert.Empty(t, got)
}

func TestGeofinderInsertIdempotent(t *testing.T) {
	g := New()
	a := &poi.Admin{ID: "a", Level: 2, Boundary: square(0, 0, 1, 1)}
	g.Insert(a)
	g.Insert(a)
	assert.Equal(t, 1, g.Len())
	assert.Len(t, g.Get(poi.Coordinate{Lon: 0.5, Lat: 0.5}), 1)
}

func TestGeofinderTieBreakByID(t *testing.T) {
	g := New()
	g.Insert(&poi.Admin{ID: "b", Level: 4, Boundary: square(0, 0, 1, 1)})
	g.Insert(&poi.Admin{ID: "a", Level: 4, Boundary: square(0, 0, 1, 1)})

	got := g.Get(poi.Coordinate{Lon: 0.5, Lat: 0.5})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestRingContainsWithHole(t *testing.T) {
	donut := Polygon{
		square(0, 0, 10, 10)[0],
		square(4, 4, 6, 6)[0],
	}
	assert.True(t, donut.Contains(poi.Coordinate{Lon: 1, Lat: 1}))
	assert.False(t, donut.Contains(poi.Coordinate{Lon: 5, Lat: 5}))
}
