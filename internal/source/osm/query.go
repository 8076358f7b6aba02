// Package osm is the relational POI source: a SQL query builder over the
// OpenStreetMap import tables (the "collaborator" spec §1 calls out as
// out-of-core-scope) plus a streaming reader that turns rows into
// poi.PoiInput values. Grounded on original_source's
// sources/openmaptiles/postgres.rs (PoisQuery/TableQuery) and the teacher's
// internal/repository/postgresosm package for the sqlx idiom.
package osm

import (
	"fmt"
	"strings"
)

// TableQuery describes one source table folded into the UNION ALL that
// feeds PoisQuery. Mirrors postgres.rs::TableQuery: most tables use the
// table's own class/subclass/mapping_key columns, but a handful (locality
// hamlets, water features, aerodromes) override them with a constant.
type TableQuery struct {
	table            string
	idColumn         string
	filter           string
	overrideClass    string
	overrideSubclass string
	overrideMapping  string
}

// NewTableQuery returns a TableQuery over table, defaulting to the imposm
// global-id helper for its id column.
func NewTableQuery(table string) TableQuery {
	return TableQuery{table: table, idColumn: "global_id_from_imposm(osm_id)"}
}

func (t TableQuery) WithIDColumn(column string) TableQuery {
	t.idColumn = column
	return t
}

func (t TableQuery) WithFilter(filter string) TableQuery {
	t.filter = filter
	return t
}

func (t TableQuery) WithClass(class string) TableQuery {
	t.overrideClass = class
	return t
}

func (t TableQuery) WithSubclass(subclass string) TableQuery {
	t.overrideSubclass = subclass
	return t
}

func (t TableQuery) WithMappingKey(mappingKey string) TableQuery {
	t.overrideMapping = mappingKey
	return t
}

func columnOrOverride(override, column, alias string) string {
	if override == "" {
		return column
	}
	return fmt.Sprintf("%s AS %s", override, alias)
}

// Build renders the SELECT for this one table.
func (t TableQuery) Build() string {
	class := columnOrOverride(t.overrideClass, "class", "class")
	mappingKey := columnOrOverride(t.overrideMapping, "mapping_key", "mapping_key")
	subclass := columnOrOverride(t.overrideSubclass, "subclass", "subclass")

	q := fmt.Sprintf(`
		SELECT
			%s AS id,
			ST_X(ST_Transform(ST_PointOnSurface(geometry), 4326)) AS lon,
			ST_Y(ST_Transform(ST_PointOnSurface(geometry), 4326)) AS lat,
			name,
			COALESCE(hstore_to_json(tags), '{}'::json)::text AS tags_json,
			%s,
			%s,
			%s
		FROM %s
	`, t.idColumn, class, mappingKey, subclass, t.table)

	if t.filter != "" {
		q += " WHERE " + t.filter
	}
	return q
}

// BBox is a (lon1, lat1, lon2, lat2) bounding box filter.
type BBox struct {
	Lon1, Lat1, Lon2, Lat2 float64
}

// PoisQuery composes a UNION ALL across tables plus the display-weight and
// bounding-box projection. Mirrors postgres.rs::PoisQuery.
type PoisQuery struct {
	bbox   *BBox
	tables []TableQuery
}

func NewPoisQuery() PoisQuery {
	return PoisQuery{}
}

func (q PoisQuery) WithTable(t TableQuery) PoisQuery {
	q.tables = append(q.tables, t)
	return q
}

func (q PoisQuery) WithBBox(b BBox) PoisQuery {
	q.bbox = &b
	return q
}

// Build renders the full statement.
func (q PoisQuery) Build() string {
	parts := make([]string, len(q.tables))
	for i, t := range q.tables {
		parts[i] = t.Build()
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			lon,
			lat,
			name,
			tags_json,
			class,
			mapping_key,
			subclass,
			poi_display_weight(name, subclass, mapping_key, tags_json::json) AS weight
		FROM (%s) AS unionall
	`, strings.Join(parts, " UNION ALL "))

	if q.bbox != nil {
		query += fmt.Sprintf(" WHERE ST_MakeEnvelope(%g, %g, %g, %g, 4326) && ST_SetSRID(ST_MakePoint(lon, lat), 4326)",
			q.bbox.Lon1, q.bbox.Lat1, q.bbox.Lon2, q.bbox.Lat2)
	}
	return query
}

// DefaultPoisQuery is the table set this pipeline indexes: the general
// imposm all_pois view plus the handful of tables whose class/subclass need
// a constant override, per postgres.rs::fetch_all_pois_query.
func DefaultPoisQuery(bbox *BBox) PoisQuery {
	q := NewPoisQuery().
		WithTable(NewTableQuery("all_pois(14)").WithIDColumn("global_id")).
		WithTable(NewTableQuery("osm_aerodrome_label_point").WithClass("'aerodrome'").WithSubclass("'airport'")).
		WithTable(NewTableQuery("osm_city_point").WithClass("'locality'").WithSubclass("'hamlet'").WithFilter("name <> '' AND place='hamlet'")).
		WithTable(NewTableQuery("osm_water_lakeline").WithClass("'water'").WithSubclass("'lake'")).
		WithTable(NewTableQuery("osm_water_point").WithClass("'water'").WithSubclass("'water'")).
		WithTable(NewTableQuery("osm_marine_point").WithClass("'water'").WithMappingKey("place"))

	if bbox != nil {
		q = q.WithBBox(*bbox)
	}
	return q
}
