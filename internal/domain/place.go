package domain

import (
	"context"
	"log/slog"
)

// PlaceResolver reverse-resolves a coordinate to a human-readable place name.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, c Coordinate) (string, error)
}

// ResolvePlaceName resolves c to a display name, absorbing every failure into
// the static fallback: a nil resolver, a lookup error, and an empty result
// all yield fallback (graceful degradation). Never fails.
func ResolvePlaceName(ctx context.Context, c Coordinate, resolver PlaceResolver, fallback string, logger *slog.Logger) string {
	if resolver == nil {
		return fallback
	}

	name, err := resolver.ResolvePlace(ctx, c)
	if err != nil {
		logger.Warn("place resolution failed",
			"lat", c.Latitude,
			"lon", c.Longitude,
			"error", err,
		)
		return fallback
	}
	if name == "" {
		return fallback
	}
	return name
}
