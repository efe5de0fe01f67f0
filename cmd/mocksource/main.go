// Command mocksource serves a canned incident API with the same wire shape
// as the real source, for local development without network access. Point the
// server at it with SOURCE_BASE_URL=http://localhost:7070/crimes.
//
// Responses are deterministic per (poly, date) so repeated queries replay
// identical data. Months older than the configured horizon return 404 to
// mimic the source's publishing lag.
//
// Usage:
//
//	go run ./cmd/mocksource -addr :7070 -horizon 12
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var categories = []string{
	"anti-social-behaviour",
	"bicycle-theft",
	"burglary",
	"criminal-damage-arson",
	"drugs",
	"other-theft",
	"public-order",
	"robbery",
	"shoplifting",
	"vehicle-crime",
	"violent-crime",
}

type wireStreet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wireLocation struct {
	Latitude  string     `json:"latitude"`
	Longitude string     `json:"longitude"`
	Street    wireStreet `json:"street"`
}

type wireRecord struct {
	ID           int64        `json:"id"`
	PersistentID string       `json:"persistent_id"`
	Category     string       `json:"category"`
	Month        string       `json:"month"`
	Location     wireLocation `json:"location"`
}

func main() {
	addr := flag.String("addr", ":7070", "listen address")
	horizon := flag.Int("horizon", 12, "months of data available before 404")
	maxRecords := flag.Int("max-records", 40, "maximum records per cell")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /crimes", handleCrimes(*horizon, *maxRecords))

	log.Printf("mock incident source listening on %s (horizon %d months)", *addr, *horizon)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func handleCrimes(horizon, maxRecords int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		date := q.Get("date")
		poly := q.Get("poly")

		if !validMonth(date) {
			http.Error(w, "invalid date parameter", http.StatusBadRequest)
			return
		}
		if monthsAgo(date) >= horizon {
			http.NotFound(w, r)
			return
		}

		records := generate(poly, date, maxRecords)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records) //nolint:errcheck // mock data response
	}
}

func validMonth(date string) bool {
	_, err := time.Parse("2006-01", date)
	return err == nil
}

func monthsAgo(date string) int {
	parsed, _ := time.Parse("2006-01", date)
	now := time.Now().UTC()
	return (now.Year()-parsed.Year())*12 + int(now.Month()-parsed.Month())
}

// generate produces a deterministic record list seeded by the query cell.
func generate(poly, date string, maxRecords int) []wireRecord {
	h := fnv.New64a()
	fmt.Fprint(h, poly, "|", date)
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	lat, lng := cellOrigin(poly)
	n := rng.Intn(maxRecords + 1)

	records := make([]wireRecord, 0, n)
	for i := 0; i < n; i++ {
		id := rng.Int63n(90_000_000) + 10_000_000
		records = append(records, wireRecord{
			ID:           id,
			PersistentID: fmt.Sprintf("mock%016x", rng.Int63()),
			Category:     categories[rng.Intn(len(categories))],
			Month:        date,
			Location: wireLocation{
				Latitude:  strconv.FormatFloat(lat+rng.Float64()*0.2, 'f', 6, 64),
				Longitude: strconv.FormatFloat(lng+rng.Float64()*0.4, 'f', 6, 64),
				Street: wireStreet{
					ID:   rng.Int63n(2_000_000),
					Name: fmt.Sprintf("On or near Mock Street %d", rng.Intn(200)),
				},
			},
		})
	}
	return records
}

// cellOrigin extracts the first vertex of the poly parameter, falling back to
// central London when the query used lat/lng or sent nothing parseable.
func cellOrigin(poly string) (float64, float64) {
	first, _, _ := strings.Cut(poly, ":")
	latStr, lngStr, ok := strings.Cut(first, ",")
	if !ok {
		return 51.5, -0.13
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return 51.5, -0.13
	}
	return lat, lng
}
