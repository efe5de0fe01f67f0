// Command nearby runs one nearby-incidents query from the terminal and prints
// the composed result as JSON. It exercises the same pipeline the server
// serves, so it doubles as a smoke check against the live incident source.
//
// Usage:
//
//	go run ./cmd/nearby -lat 51.5101 -lng -0.1337 -months 3
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/civicsignal/incident-feed/internal/adapter/police"
	"github.com/civicsignal/incident-feed/internal/aggregator"
	"github.com/civicsignal/incident-feed/internal/cache"
	"github.com/civicsignal/incident-feed/internal/config"
	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
	"github.com/civicsignal/incident-feed/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nearby: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	lat := flag.Float64("lat", 0, "latitude of the query point")
	lng := flag.Float64("lng", 0, "longitude of the query point")
	months := flag.Int("months", 0, "months to look back (default from configuration)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *months == 0 {
		*months = cfg.DefaultMonthsBack
	}

	logger := observability.NewLogger(cfg.LogLevel, "text")
	metrics := observability.NewMetrics()

	region := domain.GreaterLondon()
	source := police.NewClient(cfg.SourceBaseURL, cfg.SourceTimeout, metrics, logger)
	agg := aggregator.New(source, cache.New(), region, cfg.TileParallelism, metrics, logger)
	p := pipeline.New(region, agg, nil, nil, nil, metrics, logger)

	var coord *domain.Coordinate
	if flagWasSet("lat") && flagWasSet("lng") {
		coord = &domain.Coordinate{Latitude: *lat, Longitude: *lng}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	result := p.FetchNearby(ctx, coord, *months)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
