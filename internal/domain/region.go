package domain

// BoundingBox is an axis-aligned latitude/longitude box.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// Contains reports whether the coordinate lies inside the box (inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLatitude && c.Latitude <= b.MaxLatitude &&
		c.Longitude >= b.MinLongitude && c.Longitude <= b.MaxLongitude
}

// Tile is one polygon cell of the region decomposition, expressed as an
// ordered ring of coordinates. The ring does not repeat its first point.
type Tile struct {
	Name string
	Ring []Coordinate
}

// Centroid is the arithmetic mean of the ring's vertices. Good enough for
// cache cell keying; not a true polygon centroid.
func (t Tile) Centroid() Coordinate {
	if len(t.Ring) == 0 {
		return Coordinate{}
	}
	var lat, lon float64
	for _, c := range t.Ring {
		lat += c.Latitude
		lon += c.Longitude
	}
	n := float64(len(t.Ring))
	return Coordinate{Latitude: lat / n, Longitude: lon / n}
}

// Region is the static decomposition of the supported area into query tiles,
// plus the geofence and place fallbacks. Immutable after load.
type Region struct {
	BoundingBox    BoundingBox
	FallbackCenter Coordinate
	FallbackPlace  string
	Tiles          []Tile

	// QueryRadiusMeters is surfaced in results so consumers can size a map
	// view around the query point. It does not affect aggregation.
	QueryRadiusMeters float64
}

// Clamp validates a coordinate against the region's bounding box. A nil or
// out-of-box coordinate resolves to the region's fallback center; anything
// inside the box passes through unchanged. Total function, never fails.
func (r Region) Clamp(c *Coordinate) Coordinate {
	if c == nil || !r.BoundingBox.Contains(*c) {
		return r.FallbackCenter
	}
	return *c
}

// GreaterLondon is the default supported region: Greater London split into a
// 2x2 grid of rectangular tiles. The street-level API rejects polygons that
// cover too much area, so the region is queried tile by tile and merged.
func GreaterLondon() Region {
	const (
		minLat = 51.28
		maxLat = 51.70
		minLon = -0.51
		maxLon = 0.33
		midLat = (minLat + maxLat) / 2
		midLon = (minLon + maxLon) / 2
	)

	rect := func(name string, south, north, west, east float64) Tile {
		return Tile{
			Name: name,
			Ring: []Coordinate{
				{Latitude: north, Longitude: west},
				{Latitude: north, Longitude: east},
				{Latitude: south, Longitude: east},
				{Latitude: south, Longitude: west},
			},
		}
	}

	return Region{
		BoundingBox: BoundingBox{
			MinLatitude:  minLat,
			MaxLatitude:  maxLat,
			MinLongitude: minLon,
			MaxLongitude: maxLon,
		},
		FallbackCenter:    Coordinate{Latitude: 51.5074, Longitude: -0.1278},
		FallbackPlace:     "Central London",
		QueryRadiusMeters: 1500,
		Tiles: []Tile{
			rect("nw", midLat, maxLat, minLon, midLon),
			rect("ne", midLat, maxLat, midLon, maxLon),
			rect("sw", minLat, midLat, minLon, midLon),
			rect("se", minLat, midLat, midLon, maxLon),
		},
	}
}
