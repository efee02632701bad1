package domain

import "math"

// Immutable geographic coordinate (latitude, longitude).
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite and within range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return false
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Return the coordinate as [lon, lat] for external API compatibility.
func (c Coordinate) LonLat() []float64 { return []float64{c.Lon, c.Lat} }
