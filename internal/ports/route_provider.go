package ports

import (
	"context"
	"map-route-service/internal/domain"
)

// Contract for retrieving a drivable path between two coordinates.
type RouteProvider interface {
	// FetchRoute returns the full path geometry plus raw distance and
	// duration in SI units. Fails with domain.ErrNoRouteFound when the
	// service reports zero routes and domain.ErrLookupFailed on
	// transport or parse failure.
	FetchRoute(ctx context.Context, from, to domain.Coordinate) (domain.Route, error)
}
