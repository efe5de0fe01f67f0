package police

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civicsignal/incident-feed/internal/domain"
	"github.com/civicsignal/incident-feed/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(), discardLogger())
}

func testTile() *domain.Tile {
	return &domain.Tile{
		Name: "t",
		Ring: []domain.Coordinate{
			{Latitude: 51.6, Longitude: -0.2},
			{Latitude: 51.6, Longitude: 0.1},
			{Latitude: 51.4, Longitude: 0.1},
			{Latitude: 51.4, Longitude: -0.2},
		},
	}
}

func TestFetchMonth_TileQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-05", r.URL.Query().Get("date"))
		assert.Equal(t, "51.6,-0.2:51.6,0.1:51.4,0.1:51.4,-0.2", r.URL.Query().Get("poly"))
		assert.Empty(t, r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "category": "violent-crime", "month": "2026-05",
			 "location": {"latitude": "51.51", "longitude": "-0.13"}},
			{"id": 2, "category": "drugs", "month": "2026-05",
			 "location": {"latitude": "51.52", "longitude": "-0.14"}}
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	incidents, err := c.FetchMonth(context.Background(), domain.SourceQuery{Tile: testTile(), Month: "2026-05"})
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, "1", incidents[0].ID)
	assert.Equal(t, "violent-crime", incidents[0].Category)
}

func TestFetchMonth_PointQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "51.5074", r.URL.Query().Get("lat"))
		assert.Equal(t, "-0.1278", r.URL.Query().Get("lng"))
		assert.Empty(t, r.URL.Query().Get("poly"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	point := &domain.Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	incidents, err := c.FetchMonth(context.Background(), domain.SourceQuery{Point: point, Month: "2026-05"})
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestFetchMonth_TileTakesPrecedenceOverPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("poly"))
		assert.Empty(t, r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	q := domain.SourceQuery{
		Tile:  testTile(),
		Point: &domain.Coordinate{Latitude: 51.5, Longitude: -0.1},
		Month: "2026-05",
	}
	_, err := c.FetchMonth(context.Background(), q)
	require.NoError(t, err)
}

func TestFetchMonth_NoSelector(t *testing.T) {
	c := testClient("http://unused.invalid")
	_, err := c.FetchMonth(context.Background(), domain.SourceQuery{Month: "2026-05"})
	assert.Error(t, err)
}

func TestFetchMonth_404IsNoDataForMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchMonth(context.Background(), domain.SourceQuery{Tile: testTile(), Month: "2026-07"})
	assert.ErrorIs(t, err, domain.ErrNoDataForMonth)
}

func TestFetchMonth_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchMonth(context.Background(), domain.SourceQuery{Tile: testTile(), Month: "2026-05"})

	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestFetchMonth_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchMonth(context.Background(), domain.SourceQuery{Tile: testTile(), Month: "2026-05"})

	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
}

func TestFetchMonth_MalformedBody(t *testing.T) {
	longGarbage := "<html>" + strings.Repeat("x", 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(longGarbage))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchMonth(context.Background(), domain.SourceQuery{Tile: testTile(), Month: "2026-05"})

	var malformed *domain.MalformedBodyError
	require.ErrorAs(t, err, &malformed)
	assert.LessOrEqual(t, len(malformed.Excerpt), maxExcerptLen, "excerpt must stay bounded")
	assert.True(t, strings.HasPrefix(longGarbage, malformed.Excerpt))
}

func TestFetchMonth_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := testClient(srv.URL)
	_, err := c.FetchMonth(ctx, domain.SourceQuery{Tile: testTile(), Month: "2026-05"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNoDataForMonth))
}
