// Package http exposes the nearby-incidents API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/pipeline"
)

// NearbyFetcher runs one end-to-end nearby-incidents query.
type NearbyFetcher interface {
	FetchNearby(ctx context.Context, raw *domain.Coordinate, monthsBack int) pipeline.Result
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the incident API over HTTP.
type Server struct {
	httpServer *http.Server
	fetcher    NearbyFetcher
	validate   *validator.Validate

	defaultMonthsBack int
	requestTimeout    time.Duration

	logger *slog.Logger
}

// NewServer creates an HTTP server with the /v1/incidents/nearby route plus
// /healthz, /readyz, and /metrics.
func NewServer(addr string, fetcher NearbyFetcher, ready ReadinessChecker, defaultMonthsBack int, requestTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: requestTimeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		fetcher:           fetcher,
		validate:          validator.New(),
		defaultMonthsBack: defaultMonthsBack,
		requestTimeout:    requestTimeout,
		logger:            logger,
	}

	mux.HandleFunc("GET /v1/incidents/nearby", s.handleNearby)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// nearbyParams is the validated query surface of the nearby endpoint. Lat and
// Lng stay pointers: an absent coordinate is a legal request that the region
// fallback answers.
type nearbyParams struct {
	Lat    *float64 `validate:"omitempty,min=-90,max=90"`
	Lng    *float64 `validate:"omitempty,min=-180,max=180"`
	Months int      `validate:"min=1,max=12"`
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseNearbyParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	var coord *domain.Coordinate
	if params.Lat != nil && params.Lng != nil {
		coord = &domain.Coordinate{Latitude: *params.Lat, Longitude: *params.Lng}
	}

	result := s.fetcher.FetchNearby(ctx, coord, params.Months)
	writeJSON(w, http.StatusOK, result)
}

// parseNearbyParams binds and validates the query string. A missing months
// parameter takes the configured default; a malformed or out-of-range one is
// a client error.
func (s *Server) parseNearbyParams(r *http.Request) (nearbyParams, error) {
	q := r.URL.Query()
	params := nearbyParams{Months: s.defaultMonthsBack}

	if raw := q.Get("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			return nearbyParams{}, &paramError{name: "months", value: raw}
		}
		params.Months = months
	}
	var err error
	if params.Lat, err = parseDegreeParam(q.Get("lat"), "lat"); err != nil {
		return nearbyParams{}, err
	}
	if params.Lng, err = parseDegreeParam(q.Get("lng"), "lng"); err != nil {
		return nearbyParams{}, err
	}

	if err := s.validate.Struct(&params); err != nil {
		return nearbyParams{}, err
	}
	return params, nil
}

func parseDegreeParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid query parameter " + e.name + ": " + strconv.Quote(e.value)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
