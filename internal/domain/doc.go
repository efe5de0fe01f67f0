// Package domain models street-level public safety incident data in the
// data.police.uk API format.
//
// # Data Source
//
// Incident records come from the police.uk street-level crime API
// (https://data.police.uk/docs/method/crime-street/). The API is queried one
// calendar month at a time with either a lat/lng point or a custom polygon
// (`poly=lat1,lng1:lat2,lng2:...`), and answers with a JSON array of crime
// objects. Data for a month is published with a lag of one to two months, so
// a 404 for a recent month is an expected condition, not a failure.
//
// # Source Data Conventions
//
// Identifiers:
//
//	`id` may arrive as a number, a string, or be absent entirely.
//	`persistent_id` is an optional alternate identifier. When both are
//	missing a synthetic UUID is generated so every record is addressable.
//	Identifier uniqueness across merged months/tiles is NOT guaranteed by
//	the source; overlapping tiles can return the same record twice.
//
// Categories:
//
//	Free-text hyphenated lowercase tokens, e.g. "violent-crime",
//	"bicycle-theft". An absent category becomes the sentinel "unknown".
//	The fixed taxonomy in category.go maps raw categories to coarse display
//	groups with a severity flag; categories outside the taxonomy fall back
//	to a title-cased rendering of the raw token.
//
// Months:
//
//	ISO "YYYY-MM". An absent month becomes the sentinel "----".
//
// Locations:
//
//	`location.latitude` / `location.longitude` are strings. Unparsable
//	values fall back to (0,0) rather than dropping the record, so counts
//	stay honest even when the source mangles a coordinate.
//
// # Region Model
//
// The supported area is a static bounding box decomposed into polygon tiles
// (the API rejects very large polygons, so the region is queried tile by
// tile). Coordinates outside the bounding box clamp to a fallback center.
// All of this is process-wide configuration, immutable after load.
package domain
