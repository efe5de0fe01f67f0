package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoDataForMonth signals that the source has not published data for the
// requested month. Expected and benign: the API publishes with a lag of one
// to two months.
var ErrNoDataForMonth = errors.New("no data for month")

// StatusError is any unexpected non-2xx response from the source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source returned status %d", e.Code)
}

// MalformedBodyError is a 2xx response whose body did not parse as an
// incident list. Excerpt is capped so log payloads stay bounded.
type MalformedBodyError struct {
	Excerpt string
}

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("malformed source body: %q", e.Excerpt)
}

// SourceQuery selects one spatial cell and one calendar month. Exactly one
// spatial selector applies per call; Tile takes precedence when both are set.
type SourceQuery struct {
	Tile  *Tile
	Point *Coordinate
	Month string // ISO "YYYY-MM"
}

// IncidentSource issues a single (cell, month) query against the external
// incident API. Implementations do not retry; the caller owns failure policy.
type IncidentSource interface {
	FetchMonth(ctx context.Context, q SourceQuery) ([]Incident, error)
}
