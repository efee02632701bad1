package domain

// BoundingRegion is the minimal axis-aligned lat/lon rectangle covering
// a set of points. South <= North and West <= East always hold; the
// region degenerates to a point when all inputs coincide.
type BoundingRegion struct {
	South float64
	West  float64
	North float64
	East  float64
}

// RegionFromPoints derives the bounding region of the given coordinates
// by componentwise min/max. Returns a zero region and false when no
// points are given.
func RegionFromPoints(points ...Coordinate) (BoundingRegion, bool) {
	if len(points) == 0 {
		return BoundingRegion{}, false
	}

	r := BoundingRegion{
		South: points[0].Lat,
		North: points[0].Lat,
		West:  points[0].Lon,
		East:  points[0].Lon,
	}
	for _, p := range points[1:] {
		if p.Lat < r.South {
			r.South = p.Lat
		}
		if p.Lat > r.North {
			r.North = p.Lat
		}
		if p.Lon < r.West {
			r.West = p.Lon
		}
		if p.Lon > r.East {
			r.East = p.Lon
		}
	}
	return r, true
}
