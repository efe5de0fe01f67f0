// Package gmaps adapts the Google Maps Geocoding API to domain.PlaceResolver.
package gmaps

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"

	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
)

// placeTypePreference is the component preference order: locality first, then
// postal town (UK results often carry the town there instead), then the
// county-level area, then the top-level administrative area.
var placeTypePreference = []string{
	"locality",
	"postal_town",
	"administrative_area_level_2",
	"administrative_area_level_1",
}

// Resolver reverse-geocodes a coordinate to a display place name.
type Resolver struct {
	client  *maps.Client
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewResolver creates a resolver backed by the Google Maps API. timeout
// bounds each lookup so a slow geocoder cannot eat the request budget.
func NewResolver(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*Resolver, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Resolver{client: client, timeout: timeout, metrics: metrics, logger: logger}, nil
}

// ResolvePlace looks up the place name for a coordinate. An empty name with a
// nil error means the lookup succeeded but produced nothing usable; callers
// fall back either way via domain.ResolvePlaceName.
func (r *Resolver) ResolvePlace(ctx context.Context, c domain.Coordinate) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	results, err := r.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:     &maps.LatLng{Lat: c.Latitude, Lng: c.Longitude},
		ResultType: placeTypePreference,
	})
	if err != nil {
		r.metrics.ResolverLookups.WithLabelValues("fallback").Inc()
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	name := pickPlaceName(results)
	if name == "" {
		r.metrics.ResolverLookups.WithLabelValues("fallback").Inc()
		return "", nil
	}
	r.metrics.ResolverLookups.WithLabelValues("ok").Inc()
	return name, nil
}

// pickPlaceName selects a display name from the first result's address
// components, walking the preference order.
func pickPlaceName(results []maps.GeocodingResult) string {
	if len(results) == 0 {
		return ""
	}

	first := results[0]
	for _, wanted := range placeTypePreference {
		for _, comp := range first.AddressComponents {
			for _, typ := range comp.Types {
				if typ == wanted {
					return comp.LongName
				}
			}
		}
	}
	return ""
}
