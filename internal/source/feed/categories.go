package feed

import "strings"

// classSubclass maps a feed category onto this pipeline's OSM-compatible
// (class, subclass) vocabulary. Grounded on
// original_source/sources/tripadvisor/categories.rs::get_class_subclass; the
// original only covers Hotel/Restaurant, both of which carry a fixed
// subclass regardless of the feed's own sub-category.
var classSubclass = map[string]string{
	"hotel":      "hotel",
	"restaurant": "restaurant",
}

// ClassSubclassFor returns the normalized (class, subclass) pair for a feed
// category, or ok=false if the category isn't one this pipeline indexes.
func ClassSubclassFor(category string) (class, subclass string, ok bool) {
	class, ok = classSubclass[strings.ToLower(category)]
	if !ok {
		return "", "", false
	}
	return class, class, true
}

// osmCuisines is the OSM-compatible cuisine vocabulary a feed cuisine item
// must match to be kept as the POI's "cuisine" tag, ported verbatim from
// convert.rs::OSM_CUISINE.
var osmCuisines = map[string]bool{
	"african": true, "american": true, "asian": true, "barbecue": true,
	"caribbean": true, "chinese": true, "french": true, "german": true,
	"greek": true, "italian": true, "indian": true, "japanese": true,
	"lebanese": true, "mediterranean": true, "mexican": true, "pakistani": true,
	"pizza": true, "seafood": true, "swiss": true, "sushi": true,
	"spanish": true, "thai": true, "vietnamese": true, "western": true,
}

// NormalizeCuisine returns name lower-cased if it belongs to the OSM
// cuisine vocabulary, else "".
func NormalizeCuisine(name string) string {
	lower := strings.ToLower(name)
	if osmCuisines[lower] {
		return lower
	}
	return ""
}
