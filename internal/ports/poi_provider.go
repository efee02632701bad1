package ports

import (
	"context"
	"map-route-service/internal/domain"
)

// Contract for querying points of interest within a bounding region.
type POIProvider interface {
	// FetchPOIs returns all matching elements in the region. Zero
	// matches is a success with an empty slice; domain.ErrLookupFailed
	// is returned only on transport or parse failure. Idempotent.
	FetchPOIs(ctx context.Context, region domain.BoundingRegion, category domain.POICategory) ([]domain.PointOfInterest, error)
}
