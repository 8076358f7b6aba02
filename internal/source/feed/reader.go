package feed

import (
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/munin/poi-pipeline/internal/geofinder"
	"github.com/munin/poi-pipeline/internal/poi"
)

// Stream decodes a gzipped XML feed from r, converts every <Property>
// element into a PoiInput via Convert, and sends the results on the
// returned channel. Records that Convert drops (no valid coordinate, no
// containing admin, no name, unrecognised category) are logged at debug level and
// skipped, not treated as fatal (spec §7 "per-record build error").
func Stream(ctx context.Context, r io.Reader, gf *geofinder.AdminGeoFinder, logger *zap.Logger) (<-chan poi.PoiInput, <-chan error) {
	out := make(chan poi.PoiInput)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		gz, err := gzip.NewReader(r)
		if err != nil {
			errc <- fmt.Errorf("feed source: gzip: %w", err)
			return
		}
		defer gz.Close()

		dec := xml.NewDecoder(gz)
		dropped := 0
		for {
			tok, err := dec.Token()
			if err == io.EOF {
				break
			}
			if err != nil {
				errc <- fmt.Errorf("feed source: xml: %w", err)
				return
			}

			start, isStart := tok.(xml.StartElement)
			if !isStart || start.Name.Local != "Property" {
				continue
			}

			var p property
			if err := dec.DecodeElement(&p, &start); err != nil {
				errc <- fmt.Errorf("feed source: decode property: %w", err)
				return
			}

			input, ok := Convert(p, gf)
			if !ok {
				dropped++
				if logger != nil {
					logger.Debug("feed source: dropped property", zap.String("id", p.ID))
				}
				continue
			}

			select {
			case out <- input:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}

		if dropped > 0 && logger != nil {
			logger.Info("feed source: finished", zap.Int("dropped", dropped))
		}
	}()

	return out, errc
}
