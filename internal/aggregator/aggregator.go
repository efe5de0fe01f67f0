// Package aggregator implements the tiles-by-months fan-out against the
// incident source.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/civicsignal/incident-feed/internal/cache"
	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
)

// Aggregation is the outcome of one window run: the months attempted (always
// monthsBack entries, newest first) and the merged record list in canonical
// (month, tile, response) order. No deduplication happens across tiles or
// months; a record near a shared tile boundary may appear more than once.
type Aggregation struct {
	Months    []string          `json:"months"`
	Incidents []domain.Incident `json:"incidents"`
}

// Aggregator fans a window query out across the region's tiles and a sliding
// list of calendar months, merging whatever the source can deliver.
type Aggregator struct {
	source      domain.IncidentSource
	cache       *cache.SessionCache
	region      domain.Region
	parallelism int
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// New creates an Aggregator. The session cache is injected so callers (and
// tests) control its lifetime. parallelism bounds concurrent tile fetches
// within a month; values below 1 run sequentially.
func New(source domain.IncidentSource, sessionCache *cache.SessionCache, region domain.Region, parallelism int, metrics *observability.Metrics, logger *slog.Logger) *Aggregator {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Aggregator{
		source:      source,
		cache:       sessionCache,
		region:      region,
		parallelism: parallelism,
		metrics:     metrics,
		logger:      logger,
	}
}

// FetchWindow queries every region tile for each of the monthsBack calendar
// months ending at anchor, newest first. Cell-level failures are swallowed
// and logged; the window always completes, and Months always has exactly
// monthsBack entries: it lists months attempted, not months with data.
// Replaying with identical source responses yields identical output.
func (a *Aggregator) FetchWindow(ctx context.Context, monthsBack int, anchor time.Time) (Aggregation, error) {
	if monthsBack < 1 {
		return Aggregation{}, fmt.Errorf("monthsBack must be at least 1, got %d", monthsBack)
	}
	if len(a.region.Tiles) == 0 {
		return Aggregation{}, errors.New("region has no tiles configured")
	}

	start := time.Now()
	agg := Aggregation{Months: make([]string, 0, monthsBack)}

	for back := 0; back < monthsBack; back++ {
		month := isoMonth(anchor, back)
		for _, tileRecords := range a.fetchMonthAcrossTiles(ctx, month) {
			agg.Incidents = append(agg.Incidents, tileRecords...)
		}
		agg.Months = append(agg.Months, month)
	}

	a.metrics.WindowDuration.Observe(time.Since(start).Seconds())
	a.metrics.RecordsMerged.Observe(float64(len(agg.Incidents)))
	return agg, nil
}

// fetchMonthAcrossTiles queries every tile for one month, consulting the
// session cache per cell. Tile calls run concurrently, bounded by
// parallelism; the returned slice is indexed by tile so the merge keeps the
// configured tile order regardless of completion order. A failed tile yields
// a nil entry; one tile's failure never aborts the month.
func (a *Aggregator) fetchMonthAcrossTiles(ctx context.Context, month string) [][]domain.Incident {
	results := make([][]domain.Incident, len(a.region.Tiles))

	var g errgroup.Group
	g.SetLimit(a.parallelism)

	for i := range a.region.Tiles {
		tile := &a.region.Tiles[i]
		g.Go(func() error {
			centroid := tile.Centroid()
			if cached, ok := a.cache.Get(centroid.Latitude, centroid.Longitude, month); ok {
				a.metrics.CacheLookups.WithLabelValues("hit").Inc()
				results[i] = cached
				return nil
			}
			a.metrics.CacheLookups.WithLabelValues("miss").Inc()

			records, err := a.source.FetchMonth(ctx, domain.SourceQuery{Tile: tile, Month: month})
			if err != nil {
				a.logCellFailure(tile.Name, month, err)
				return nil
			}

			// Empty results are cached too, so a known-empty cell is not
			// re-queried within the session. Failures are not cached.
			a.cache.Set(centroid.Latitude, centroid.Longitude, month, records)
			results[i] = records
			return nil
		})
	}
	_ = g.Wait() // workers swallow their own failures

	return results
}

// logCellFailure logs at debug for the expected no-data case and warn for
// everything else.
func (a *Aggregator) logCellFailure(tile, month string, err error) {
	if errors.Is(err, domain.ErrNoDataForMonth) {
		a.logger.Debug("no data published for cell", "tile", tile, "month", month)
		return
	}
	a.logger.Warn("cell fetch failed, skipping", "tile", tile, "month", month, "error", err)
}

// isoMonth renders anchor minus back calendar months as "YYYY-MM".
// Normalizing to the first of the month first sidesteps end-of-month
// arithmetic (stepping back from Jan 31 must not skip February).
func isoMonth(anchor time.Time, back int) string {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -back, 0).Format("2006-01")
}
