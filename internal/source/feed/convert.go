package feed

import (
	"strconv"
	"strings"

	"github.com/munin/poi-pipeline/internal/geofinder"
	"github.com/munin/poi-pipeline/internal/langs"
	"github.com/munin/poi-pipeline/internal/poi"
)

// maxReviewCount is the review count that saturates a feed POI's weight at
// 1, ported from convert.rs::MAX_REVIEW_COUNT.
const maxReviewCount = 1000

// Convert turns a feed property into a PoiInput. ok is false when the
// record is missing its coordinate or has one outside the WGS84 range, falls
// outside every known admin, has no non-empty name, or doesn't map to a
// category this pipeline indexes — mirroring convert.rs's
// BuildError cases, which this pipeline treats as a drop rather than a
// fatal error (spec §7 "per-record build error").
func Convert(p property, gf *geofinder.AdminGeoFinder) (poi.PoiInput, bool) {
	if p.Longitude == nil || p.Latitude == nil {
		return poi.PoiInput{}, false
	}
	coord := poi.Coordinate{Lon: *p.Longitude, Lat: *p.Latitude}
	if !coord.Valid() {
		return poi.PoiInput{}, false
	}

	admins := gf.Get(coord)
	if len(admins) == 0 {
		return poi.PoiInput{}, false
	}
	country := ""
	for _, a := range admins {
		if a.Country != "" {
			country = a.Country
			break
		}
	}

	name := langs.Select(country, toMap(p.Name))
	if name == "" {
		return poi.PoiInput{}, false
	}

	category := strings.ToLower(langs.Select("US", toMap(p.Category)))
	class, _, ok := ClassSubclassFor(category)
	if !ok {
		return poi.PoiInput{}, false
	}

	subCategory := category
	for _, sc := range p.SubCategories.SubCategory {
		if v := langs.Select("US", toMap(sc.Name)); v != "" {
			subCategory = strings.ToLower(strings.ReplaceAll(v, " ", ""))
			break
		}
	}

	var cuisine string
	for _, item := range p.Cuisine.Item {
		v := langs.Select("US", toMap(item.Name))
		if n := NormalizeCuisine(v); n != "" {
			cuisine = n
			break
		}
	}

	weight := float64(p.ReviewCount) / maxReviewCount
	if weight > 1 {
		weight = 1
	}

	tags := map[string]string{}
	if addr := langs.Select(country, toMap(p.Address)); addr != "" {
		tags["ta:address_label"] = addr
	}
	if cuisine != "" {
		tags["cuisine"] = cuisine
	}
	if p.URL != "" {
		tags["website"] = p.URL
	}
	if p.TAUrl != "" {
		tags["ta:url"] = p.TAUrl
	}
	if p.TAPhotosUrl != "" {
		tags["ta:photos_url"] = p.TAPhotosUrl
	}
	tags["ta:review_count"] = strconv.FormatUint(p.ReviewCount, 10)
	if p.AverageRating != nil {
		tags["ta:average_rating"] = strconv.FormatFloat(*p.AverageRating, 'f', -1, 64)
	}

	return poi.PoiInput{
		ID:         "ta:poi:" + p.ID,
		Coord:      coord,
		Name:       name,
		Class:      class,
		Subclass:   subCategory,
		MappingKey: class,
		Tags:       tags,
		Weight:     &weight,
	}, true
}
