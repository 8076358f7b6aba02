package locator

// Pair is a (mapping_key, subclass) tag pair used to deny a POI from the
// searchable sink regardless of name. Grounded on original_source's
// pois.rs::NOT_SEARCHABLE_ITEMS.
type Pair struct {
	MappingKey string
	Subclass   string
}

// DefaultDenyList is the deny-list shipped by this pipeline. cmd/indexer
// uses config.PipelineConfig.Denylist when it is non-empty and this default
// otherwise. config.Load does not read a deny-list from the environment or
// the .env file, so Denylist is empty after Load and this default applies.
var DefaultDenyList = []Pair{
	{"highway", "bus_stop"},
	{"barrier", "gate"},
	{"amenity", "waste_basket"},
	{"amenity", "post_box"},
	{"tourism", "information"},
	{"amenity", "recycling"},
	{"barrier", "lift_gate"},
	{"barrier", "bollard"},
	{"barrier", "cycle_barrier"},
	{"amenity", "bicycle_rental"},
	{"tourism", "artwork"},
	{"amenity", "toilets"},
	{"leisure", "playground"},
	{"amenity", "telephone"},
	{"amenity", "taxi"},
	{"leisure", "pitch"},
	{"amenity", "shelter"},
	{"barrier", "sally_port"},
	{"barrier", "stile"},
	{"amenity", "ferry_terminal"},
	{"amenity", "post_office"},
	{"railway", "subway_entrance"},
	{"railway", "train_station_entrance"},
}

// DenyList is a set of (mapping_key, subclass) pairs that are never
// searchable, used by the router (§4.F).
type DenyList struct {
	set map[Pair]struct{}
}

// NewDenyList builds a DenyList from pairs. A nil or empty pairs denies
// nothing.
func NewDenyList(pairs []Pair) *DenyList {
	d := &DenyList{set: make(map[Pair]struct{}, len(pairs))}
	for _, p := range pairs {
		d.set[p] = struct{}{}
	}
	return d
}

// IsSearchable reports whether a POI with this name/mapping_key/subclass
// belongs on the searchable sink: it must have a non-empty name and its tag
// pair must not be in the deny-list.
func (d *DenyList) IsSearchable(name, mappingKey, subclass string) bool {
	if name == "" {
		return false
	}
	if d == nil {
		return true
	}
	_, denied := d.set[Pair{MappingKey: mappingKey, Subclass: subclass}]
	return !denied
}
