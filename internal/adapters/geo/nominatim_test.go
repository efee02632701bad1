package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"map-route-service/internal/domain"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *NominatimGeocoder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNominatimGeocoder(srv.URL, "map-route-service-test", 5*time.Second)
}

func TestResolveFirstCandidateWins(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Delhi" {
			t.Errorf("q = %q, want Delhi", got)
		}
		w.Write([]byte(`[
			{"lat":"28.6139","lon":"77.2090","display_name":"Delhi, India"},
			{"lat":"39.0000","lon":"-84.0000","display_name":"Delhi, Ohio"}
		]`))
	})

	place, err := g.Resolve(context.Background(), "  Delhi ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if place.Coordinate.Lat != 28.6139 || place.Coordinate.Lon != 77.2090 {
		t.Errorf("coordinate = %+v, want first candidate", place.Coordinate)
	}
	if place.DisplayName != "Delhi, India" {
		t.Errorf("display name = %q", place.DisplayName)
	}
	if place.Query != "Delhi" {
		t.Errorf("query not normalized: %q", place.Query)
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	called := false
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := g.Resolve(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if called {
		t.Fatal("empty query must not reach the network")
	}
}

func TestResolveNotFound(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := g.Resolve(context.Background(), "Zzznotaplace123")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if errors.Is(err, domain.ErrLookupFailed) {
		t.Fatal("NotFound must not be conflated with LookupFailed")
	}
}

func TestResolveLookupFailed(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		},
		"bad coordinate": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"lat":"not-a-number","lon":"77.2","display_name":"x"}]`))
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			g := newTestGeocoder(t, h)
			_, err := g.Resolve(context.Background(), "Delhi")
			if !errors.Is(err, domain.ErrLookupFailed) {
				t.Fatalf("err = %v, want ErrLookupFailed", err)
			}
		})
	}
}
