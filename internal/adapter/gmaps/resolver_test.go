package gmaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"googlemaps.github.io/maps"
)

func component(longName string, types ...string) maps.AddressComponent {
	return maps.AddressComponent{LongName: longName, ShortName: longName, Types: types}
}

func TestPickPlaceName_PrefersLocality(t *testing.T) {
	results := []maps.GeocodingResult{{
		AddressComponents: []maps.AddressComponent{
			component("Greater London", "administrative_area_level_1", "political"),
			component("Camden", "locality", "political"),
			component("London Borough of Camden", "administrative_area_level_2"),
		},
	}}

	assert.Equal(t, "Camden", pickPlaceName(results))
}

func TestPickPlaceName_PostalTownBeforeAdminAreas(t *testing.T) {
	results := []maps.GeocodingResult{{
		AddressComponents: []maps.AddressComponent{
			component("Greater London", "administrative_area_level_1"),
			component("London", "postal_town"),
		},
	}}

	assert.Equal(t, "London", pickPlaceName(results))
}

func TestPickPlaceName_AdminLevel2BeforeLevel1(t *testing.T) {
	results := []maps.GeocodingResult{{
		AddressComponents: []maps.AddressComponent{
			component("England", "administrative_area_level_1"),
			component("Westminster", "administrative_area_level_2"),
		},
	}}

	assert.Equal(t, "Westminster", pickPlaceName(results))
}

func TestPickPlaceName_TopLevelAdminAsLastResort(t *testing.T) {
	results := []maps.GeocodingResult{{
		AddressComponents: []maps.AddressComponent{
			component("United Kingdom", "country", "political"),
			component("England", "administrative_area_level_1"),
		},
	}}

	assert.Equal(t, "England", pickPlaceName(results))
}

func TestPickPlaceName_OnlyFirstResultIsConsulted(t *testing.T) {
	results := []maps.GeocodingResult{
		{AddressComponents: []maps.AddressComponent{component("United Kingdom", "country")}},
		{AddressComponents: []maps.AddressComponent{component("Camden", "locality")}},
	}

	assert.Empty(t, pickPlaceName(results))
}

func TestPickPlaceName_NoResults(t *testing.T) {
	assert.Empty(t, pickPlaceName(nil))
	assert.Empty(t, pickPlaceName([]maps.GeocodingResult{}))
}
