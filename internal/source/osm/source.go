package osm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/munin/poi-pipeline/internal/poi"
)

// row is the shape of one result row from PoisQuery.Build, scanned via
// sqlx.StructScan the way the teacher's postgresosm repository scans rows.
type row struct {
	ID         string  `db:"id"`
	Lon        float64 `db:"lon"`
	Lat        float64 `db:"lat"`
	Name       string  `db:"name"`
	TagsJSON   string  `db:"tags_json"`
	Class      string  `db:"class"`
	MappingKey string  `db:"mapping_key"`
	Subclass   string  `db:"subclass"`
	Weight     *float64 `db:"weight"`
}

func (r row) toPoiInput() poi.PoiInput {
	var tags map[string]string
	_ = json.Unmarshal([]byte(r.TagsJSON), &tags)
	if tags == nil {
		tags = map[string]string{}
	}
	return poi.PoiInput{
		ID:         fmt.Sprintf("pg:%s", r.ID),
		Coord:      poi.Coordinate{Lon: r.Lon, Lat: r.Lat},
		Name:       r.Name,
		Class:      r.Class,
		Subclass:   r.Subclass,
		MappingKey: r.MappingKey,
		Tags:       tags,
		Weight:     r.Weight,
	}
}

// Source streams PoiInput records out of the OSM import database.
type Source struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// New wraps an already-connected *sqlx.DB. Establishing the connection is
// the collaborator's job (spec §1 "out of scope").
func New(db *sqlx.DB, logger *zap.Logger) *Source {
	return &Source{db: db, logger: logger}
}

// Stream runs query and sends one PoiInput per result row on the returned
// channel, which is closed when the query is exhausted, ctx is canceled, or
// a row-level error occurs (reported by the returned error channel). Rows
// with no name are skipped: spec §4.F already requires a non-empty name for
// the searchable sink, and an empty name here means an incomplete import row,
// which postgres.rs's own queries filter too (e.g. "name <> ''").
func (s *Source) Stream(ctx context.Context, query PoisQuery) (<-chan poi.PoiInput, <-chan error) {
	out := make(chan poi.PoiInput)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		rows, err := s.db.QueryxContext(ctx, query.Build())
		if err != nil {
			errc <- fmt.Errorf("osm source: query: %w", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r row
			if err := rows.StructScan(&r); err != nil {
				errc <- fmt.Errorf("osm source: scan: %w", err)
				return
			}
			if r.Name == "" {
				continue
			}

			select {
			case out <- r.toPoiInput():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if err := rows.Err(); err != nil {
			errc <- fmt.Errorf("osm source: rows: %w", err)
		}
	}()

	return out, errc
}
