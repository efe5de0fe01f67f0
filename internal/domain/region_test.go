package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp_InsideIsIdentity(t *testing.T) {
	region := GreaterLondon()
	in := Coordinate{Latitude: 51.5101, Longitude: -0.1337}

	out := region.Clamp(&in)
	assert.Equal(t, in, out)
}

func TestClamp_OutsideReturnsFallbackCenter(t *testing.T) {
	region := GreaterLondon()

	cases := []struct {
		name  string
		coord Coordinate
	}{
		{"north of box", Coordinate{Latitude: 53.0, Longitude: -0.1}},
		{"south of box", Coordinate{Latitude: 50.0, Longitude: -0.1}},
		{"west of box", Coordinate{Latitude: 51.5, Longitude: -1.2}},
		{"east of box", Coordinate{Latitude: 51.5, Longitude: 1.0}},
		{"nowhere near", Coordinate{Latitude: -33.86, Longitude: 151.21}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, region.FallbackCenter, region.Clamp(&tc.coord))
		})
	}
}

func TestClamp_NilReturnsFallbackCenter(t *testing.T) {
	region := GreaterLondon()
	assert.Equal(t, region.FallbackCenter, region.Clamp(nil))
}

func TestClamp_Idempotent(t *testing.T) {
	region := GreaterLondon()
	outside := Coordinate{Latitude: 0, Longitude: 0}

	once := region.Clamp(&outside)
	twice := region.Clamp(&once)
	assert.Equal(t, once, twice)
}

func TestBoundingBox_ContainsEdges(t *testing.T) {
	box := BoundingBox{MinLatitude: 51, MaxLatitude: 52, MinLongitude: -1, MaxLongitude: 1}

	assert.True(t, box.Contains(Coordinate{Latitude: 51, Longitude: -1}), "edges are inclusive")
	assert.True(t, box.Contains(Coordinate{Latitude: 52, Longitude: 1}))
	assert.False(t, box.Contains(Coordinate{Latitude: 52.0001, Longitude: 0}))
}

func TestTile_Centroid(t *testing.T) {
	tile := Tile{Name: "t", Ring: []Coordinate{
		{Latitude: 52, Longitude: -1},
		{Latitude: 52, Longitude: 1},
		{Latitude: 50, Longitude: 1},
		{Latitude: 50, Longitude: -1},
	}}

	c := tile.Centroid()
	assert.InDelta(t, 51.0, c.Latitude, 1e-9)
	assert.InDelta(t, 0.0, c.Longitude, 1e-9)
}

func TestTile_CentroidEmptyRing(t *testing.T) {
	assert.Equal(t, Coordinate{}, Tile{}.Centroid())
}

func TestGreaterLondon_TilesCoverFallbackCenter(t *testing.T) {
	region := GreaterLondon()
	require.Len(t, region.Tiles, 4)
	assert.True(t, region.BoundingBox.Contains(region.FallbackCenter))

	for _, tile := range region.Tiles {
		require.NotEmpty(t, tile.Ring)
		assert.True(t, region.BoundingBox.Contains(tile.Centroid()),
			"tile %s centroid should stay inside the region box", tile.Name)
	}
}
