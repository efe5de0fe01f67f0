// Package pipeline composes the geofence, aggregator, categorizer, place
// resolver, and archive publisher into the end-to-end "incidents near a
// point" operation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/civicsignal/incident-feed/internal/aggregator"
	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
)

// WindowFetcher runs the tiles-by-months fan-out.
type WindowFetcher interface {
	FetchWindow(ctx context.Context, monthsBack int, anchor time.Time) (aggregator.Aggregation, error)
}

// ArchiveSink receives merged record batches for downstream storage.
type ArchiveSink interface {
	PublishBatch(ctx context.Context, records []domain.Incident) error
}

// Result is the composed answer handed to consumers. It is always well
// formed: in the worst case Totals is zero, Groups is empty, Months lists the
// attempted window, and Place is the region fallback. Consumers never see an
// error from this pipeline.
type Result struct {
	Place        string                 `json:"place"`
	Location     domain.Coordinate      `json:"location"`
	RadiusMeters float64                `json:"radius_meters"`
	Months       []string               `json:"months"`
	Incidents    []domain.Incident      `json:"incidents"`
	Totals       domain.Totals          `json:"totals"`
	Groups       []domain.CategoryCount `json:"groups"`
}

// Pipeline orchestrates one nearby-incidents run per call. Safe for
// concurrent use.
type Pipeline struct {
	region   domain.Region
	fetcher  WindowFetcher
	resolver domain.PlaceResolver
	archive  ArchiveSink
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
	served   atomic.Bool
}

// New creates a Pipeline. resolver and archive may be nil (place resolution
// falls back to the region's static name; archiving is skipped). A nil clock
// means real time.
func New(region domain.Region, fetcher WindowFetcher, resolver domain.PlaceResolver, archive ArchiveSink, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		region:   region,
		fetcher:  fetcher,
		resolver: resolver,
		archive:  archive,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// FetchNearby clamps the raw coordinate to the supported region, aggregates
// the incident window around it, categorizes the merged records, and resolves
// the place name. Failures at every level are absorbed into a well-formed
// result; the caller owns the overall timeout via ctx.
func (p *Pipeline) FetchNearby(ctx context.Context, raw *domain.Coordinate, monthsBack int) Result {
	coord := p.region.Clamp(raw)

	agg, err := p.fetcher.FetchWindow(ctx, monthsBack, p.clock.Now())
	if err != nil {
		// Window-level faults (bad window size, missing tile config) still
		// produce an empty-but-valid result.
		p.logger.Error("window aggregation failed", "months_back", monthsBack, "error", err)
		agg = aggregator.Aggregation{}
	}

	result := Result{
		Place:        domain.ResolvePlaceName(ctx, coord, p.resolver, p.region.FallbackPlace, p.logger),
		Location:     coord,
		RadiusMeters: p.region.QueryRadiusMeters,
		Months:       agg.Months,
		Incidents:    agg.Incidents,
		Totals:       domain.TotalAndSerious(agg.Incidents),
		Groups:       domain.GroupCounts(agg.Incidents),
	}

	p.publishArchive(ctx, agg.Incidents)

	p.served.Store(true)
	p.metrics.ServiceReady.Set(1)
	return result
}

// publishArchive hands the merged batch to the archive sink, best-effort.
func (p *Pipeline) publishArchive(ctx context.Context, records []domain.Incident) {
	if p.archive == nil || len(records) == 0 {
		return
	}
	if err := p.archive.PublishBatch(ctx, records); err != nil {
		p.metrics.ArchiveErrors.Inc()
		p.logger.Warn("archive publish failed", "records", len(records), "error", err)
		return
	}
	p.metrics.ArchivePublished.Add(float64(len(records)))
}

// CheckReadiness reports whether the pipeline can serve requests. The
// pipeline is request-driven, so readiness is a configuration check rather
// than a first-message check.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if len(p.region.Tiles) == 0 {
		return errors.New("region has no tiles configured")
	}
	return nil
}

// Served reports whether at least one window has been run. Exposed for tests
// and diagnostics.
func (p *Pipeline) Served() bool {
	return p.served.Load()
}
