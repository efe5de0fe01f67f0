package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// UnknownCategory is the sentinel for records the source left unclassified.
	UnknownCategory = "unknown"
	// UnknownMonth is the sentinel for records without a reported month.
	UnknownMonth = "----"
)

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Incident is one reported incident. Constructed once per deserialized source
// record, repaired with the documented fallbacks, and immutable afterwards.
type Incident struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	Month    string     `json:"month"`
	Location Coordinate `json:"location"`
	Street   string     `json:"street,omitempty"`
}

// sourceRecord mirrors the wire shape of one crime object.
type sourceRecord struct {
	ID           flexibleID `json:"id"`
	PersistentID string     `json:"persistent_id"`
	Category     string     `json:"category"`
	Month        string     `json:"month"`
	Location     struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
		Street    struct {
			ID   flexibleID `json:"id"`
			Name string     `json:"name"`
		} `json:"street"`
	} `json:"location"`
}

// flexibleID absorbs the source's habit of sending ids as numbers, strings,
// or null.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// ParseIncidents decodes a source response body into incident records.
// Record-level defects (missing ids, categories, months, bad coordinate
// strings) are repaired rather than rejected; only a body that is not an
// incident list at all is an error.
func ParseIncidents(body []byte) ([]Incident, error) {
	var recs []sourceRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("parse incident list: %w", err)
	}

	incidents := make([]Incident, 0, len(recs))
	for _, rec := range recs {
		incidents = append(incidents, incidentFromRecord(rec))
	}
	return incidents, nil
}

func incidentFromRecord(rec sourceRecord) Incident {
	id := string(rec.ID)
	if id == "" {
		id = rec.PersistentID
	}
	if id == "" {
		// Synthetic identifier: two id-less records in a batch must still be distinct.
		id = uuid.NewString()
	}

	category := rec.Category
	if category == "" {
		category = UnknownCategory
	}

	month := rec.Month
	if month == "" {
		month = UnknownMonth
	}

	return Incident{
		ID:       id,
		Category: category,
		Month:    month,
		Location: Coordinate{
			Latitude:  parseDegreesOrZero(rec.Location.Latitude),
			Longitude: parseDegreesOrZero(rec.Location.Longitude),
		},
		Street: rec.Location.Street.Name,
	}
}

// parseDegreesOrZero parses a coordinate string as float64, returning 0 on
// failure so a record with mangled coordinates still counts toward totals.
func parseDegreesOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
