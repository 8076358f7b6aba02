package geofinder

import "github.com/munin/poi-pipeline/internal/poi"

// Ring and Polygon live on poi (Admin.Boundary needs the type); aliased here
// so this package's own code and tests can keep referring to them
// unqualified.
type Ring = poi.Ring
type Polygon = poi.Polygon
