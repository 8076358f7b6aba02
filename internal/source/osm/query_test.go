package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableQueryBuildUsesOverrides(t *testing.T) {
	q := NewTableQuery("osm_city_point").
		WithClass("'locality'").
		WithSubclass("'hamlet'").
		WithFilter("name <> '' AND place='hamlet'")

	sql := q.Build()
	assert.Contains(t, sql, "'locality' AS class")
	assert.Contains(t, sql, "'hamlet' AS subclass")
	assert.Contains(t, sql, "FROM osm_city_point")
	assert.Contains(t, sql, "WHERE name <> '' AND place='hamlet'")
}

func TestTableQueryBuildDefaultsPassThroughColumns(t *testing.T) {
	q := NewTableQuery("all_pois(14)").WithIDColumn("global_id")
	sql := q.Build()
	assert.Contains(t, sql, "global_id AS id")
	assert.Contains(t, sql, "mapping_key,")
}

func TestPoisQueryBuildJoinsTablesWithUnionAll(t *testing.T) {
	q := NewPoisQuery().
		WithTable(NewTableQuery("a")).
		WithTable(NewTableQuery("b"))
	sql := q.Build()
	assert.Contains(t, sql, "UNION ALL")
	assert.Contains(t, sql, "poi_display_weight")
}

func TestPoisQueryBuildAddsBBoxFilter(t *testing.T) {
	q := NewPoisQuery().WithTable(NewTableQuery("a")).WithBBox(BBox{Lon1: 1, Lat1: 2, Lon2: 3, Lat2: 4})
	sql := q.Build()
	assert.Contains(t, sql, "ST_MakeEnvelope(1, 2, 3, 4, 4326)")
}

func TestDefaultPoisQueryIncludesKnownOverrides(t *testing.T) {
	sql := DefaultPoisQuery(nil).Build()
	assert.Contains(t, sql, "'aerodrome'")
	assert.Contains(t, sql, "osm_marine_point")
}
