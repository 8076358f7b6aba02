package geofinder

import (
	"sort"
	"sync"

	"github.com/munin/poi-pipeline/internal/poi"
)

// cellSize is the edge length, in degrees, of one grid bucket. A city-sized
// boundary spans a few cells; a 10x10 degree country-sized boundary spans
// 40x40 = 1600 cells. A point-in-polygon test only ever runs against admins
// whose bounding box overlaps the query point's cell.
const cellSize = 0.25

type cellKey struct {
	x, y int64
}

func cellOf(lon, lat float64) cellKey {
	return cellKey{
		x: int64(lon / cellSize),
		y: int64(lat / cellSize),
	}
}

// AdminGeoFinder is an in-memory spatial index mapping a coordinate to the
// stack of administrative regions containing it. Safe for concurrent use
// once built: Insert takes a write lock, Get only a read lock, and in
// practice all Inserts happen once at startup before any Get is issued.
type AdminGeoFinder struct {
	mu      sync.RWMutex
	byID    map[string]*poi.Admin
	buckets map[cellKey][]*poi.Admin
}

// New returns an empty geofinder.
func New() *AdminGeoFinder {
	return &AdminGeoFinder{
		byID:    make(map[string]*poi.Admin),
		buckets: make(map[cellKey][]*poi.Admin),
	}
}

// Insert adds admin to the index. Idempotent on admin.ID. Admins without a
// boundary are tracked (so Insert is still idempotent and the admin is
// reachable by ID elsewhere) but never placed in the spatial grid, per the
// "no fallible operations" contract: a missing boundary just means the
// admin is never returned by Get.
func (g *AdminGeoFinder) Insert(admin *poi.Admin) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byID[admin.ID]; exists {
		return
	}
	g.byID[admin.ID] = admin

	minLon, minLat, maxLon, maxLat, ok := admin.Boundary.BBox()
	if !ok {
		return
	}

	for x := int64(minLon / cellSize); x <= int64(maxLon/cellSize); x++ {
		for y := int64(minLat / cellSize); y <= int64(maxLat/cellSize); y++ {
			key := cellKey{x, y}
			g.buckets[key] = append(g.buckets[key], admin)
		}
	}
}

// Get returns all admins whose boundary contains coord, ordered most
// specific first (descending level), ties broken by ascending ID for
// determinism. Returns an empty slice (never nil) when nothing contains the
// point.
func (g *AdminGeoFinder) Get(coord poi.Coordinate) []*poi.Admin {
	g.mu.RLock()
	defer g.mu.RUnlock()

	key := cellOf(coord.Lon, coord.Lat)
	candidates := g.buckets[key]
	if len(candidates) == 0 {
		return []*poi.Admin{}
	}

	seen := make(map[string]bool, len(candidates))
	matches := make([]*poi.Admin, 0, len(candidates))
	for _, admin := range candidates {
		if seen[admin.ID] {
			continue
		}
		seen[admin.ID] = true
		if admin.Boundary.Contains(coord) {
			matches = append(matches, admin)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Level != matches[j].Level {
			return matches[i].Level > matches[j].Level
		}
		return matches[i].ID < matches[j].ID
	})

	return matches
}

// Len returns the number of distinct admins inserted (with or without a
// boundary), mostly useful for startup logging.
func (g *AdminGeoFinder) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byID)
}
