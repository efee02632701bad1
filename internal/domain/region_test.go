package domain

import "testing"

func TestRegionFromPoints(t *testing.T) {
	path := []Coordinate{
		{Lat: 28.61, Lon: 77.21},
		{Lat: 27.88, Lon: 77.90},
		{Lat: 27.18, Lon: 78.01},
	}

	r, ok := RegionFromPoints(path...)
	if !ok {
		t.Fatal("expected a region")
	}

	if r.South != 27.18 || r.North != 28.61 {
		t.Errorf("south/north = %v/%v, want 27.18/28.61", r.South, r.North)
	}
	if r.West != 77.21 || r.East != 78.01 {
		t.Errorf("west/east = %v/%v, want 77.21/78.01", r.West, r.East)
	}
	if r.South > r.North || r.West > r.East {
		t.Errorf("region not normalized: %+v", r)
	}
}

func TestRegionFromPointsDegenerate(t *testing.T) {
	p := Coordinate{Lat: 20.5937, Lon: 78.9629}

	r, ok := RegionFromPoints(p, p)
	if !ok {
		t.Fatal("expected a region")
	}
	if r.South != p.Lat || r.North != p.Lat || r.West != p.Lon || r.East != p.Lon {
		t.Errorf("expected point region, got %+v", r)
	}
}

func TestRegionFromPointsEmpty(t *testing.T) {
	if _, ok := RegionFromPoints(); ok {
		t.Fatal("expected no region for zero points")
	}
}

func TestCoordinateValid(t *testing.T) {
	cases := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{Lat: 28.6, Lon: 77.2}, true},
		{Coordinate{Lat: -90, Lon: 180}, true},
		{Coordinate{Lat: 91, Lon: 0}, false},
		{Coordinate{Lat: 0, Lon: -181}, false},
	}

	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Errorf("Valid(%+v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}
