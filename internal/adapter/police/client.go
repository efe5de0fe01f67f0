// Package police adapts the data.police.uk street-level crime API to
// domain.IncidentSource.
package police

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
)

// maxExcerptLen caps the diagnostic excerpt carried by a MalformedBodyError
// so log payloads stay bounded.
const maxExcerptLen = 120

// Client implements domain.IncidentSource. One call issues one GET for one
// (spatial cell, month) pair. The client never retries; a circuit breaker
// sheds load during source outages, and the aggregator owns failure policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an incident source client for the given API base URL,
// e.g. "https://data.police.uk/api/crimes-street/all-crime".
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "incident-source",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchMonth queries one spatial cell for one calendar month.
//
// Result classification:
//   - 404: domain.ErrNoDataForMonth (the source has not published that month)
//   - other non-2xx: *domain.StatusError
//   - 2xx with an unparsable body: *domain.MalformedBodyError
//   - 2xx otherwise: the record list, possibly empty
func (c *Client) FetchMonth(ctx context.Context, q domain.SourceQuery) ([]domain.Incident, error) {
	params, err := queryParams(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		// 5xx counts as a breaker failure so a struggling source trips it;
		// 4xx is a per-query condition and passes through.
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, &domain.StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	})
	c.metrics.SourceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var statusErr *domain.StatusError
		switch {
		case errors.As(err, &statusErr):
			c.metrics.SourceRequests.WithLabelValues("http_error").Inc()
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			c.metrics.SourceRequests.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("source circuit breaker: %w", err)
		default:
			c.metrics.SourceRequests.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.SourceRequests.WithLabelValues("no_data").Inc()
		return nil, domain.ErrNoDataForMonth
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.SourceRequests.WithLabelValues("http_error").Inc()
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.SourceRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read source body: %w", err)
	}

	incidents, err := domain.ParseIncidents(body)
	if err != nil {
		c.metrics.SourceRequests.WithLabelValues("malformed").Inc()
		return nil, &domain.MalformedBodyError{Excerpt: excerpt(body)}
	}

	c.metrics.SourceRequests.WithLabelValues("ok").Inc()
	return incidents, nil
}

// queryParams builds the API query string. Tile takes precedence over Point
// when both selectors are set.
func queryParams(q domain.SourceQuery) (url.Values, error) {
	params := url.Values{"date": {q.Month}}

	switch {
	case q.Tile != nil:
		params.Set("poly", encodeRing(q.Tile.Ring))
	case q.Point != nil:
		params.Set("lat", formatDegrees(q.Point.Latitude))
		params.Set("lng", formatDegrees(q.Point.Longitude))
	default:
		return nil, errors.New("source query needs a tile or a point")
	}
	return params, nil
}

// encodeRing renders a polygon ring as "lat1,lng1:lat2,lng2:...". The API
// accepts open rings; the trailing point does not repeat the first.
func encodeRing(ring []domain.Coordinate) string {
	points := make([]string, len(ring))
	for i, c := range ring {
		points[i] = formatDegrees(c.Latitude) + "," + formatDegrees(c.Longitude)
	}
	return strings.Join(points, ":")
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func excerpt(body []byte) string {
	s := string(body)
	if len(s) > maxExcerptLen {
		return s[:maxExcerptLen]
	}
	return s
}
