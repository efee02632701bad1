package ports

import (
	"context"
	"map-route-service/internal/domain"
)

// Contract for resolving a free-text place name to a coordinate.
type Geocoder interface {
	// Resolve returns the first-ranked candidate for the query.
	// Fails with domain.ErrEmptyInput on a blank query,
	// domain.ErrNotFound on zero candidates, and domain.ErrLookupFailed
	// on transport or parse failure.
	Resolve(ctx context.Context, query string) (domain.ResolvedPlace, error)
}
