package domain

// ResolvedPlace is the result of geocoding one free-text query.
// Ephemeral: never persisted except embedded in a HistoryEntry.
type ResolvedPlace struct {
	Query       string
	Coordinate  Coordinate
	DisplayName string
}

// Route is a drivable path between two coordinates as returned by the
// routing service. Distance and duration are raw SI units; display
// rounding happens at the orchestrator. A Route is replaced wholesale
// on each new search and never mutated in place.
type Route struct {
	Path            []Coordinate
	DistanceMeters  float64
	DurationSeconds float64
}
