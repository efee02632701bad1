package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"map-route-service/internal/domain"
	"map-route-service/internal/platform/httpx"
	"map-route-service/internal/platform/obs"
)

// OSRMRouteProvider fetches driving routes from an OSRM instance,
// requesting full GeoJSON geometry. Distance and duration pass through
// in SI units untouched.
type OSRMRouteProvider struct {
	client  *httpx.Client
	baseURL string
	profile string
}

func NewOSRMRouteProvider(baseURL string, timeout time.Duration) *OSRMRouteProvider {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &OSRMRouteProvider{
		client:  httpx.New(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

func (p *OSRMRouteProvider) FetchRoute(ctx context.Context, from, to domain.Coordinate) (_ domain.Route, err error) {
	defer obs.Time(ctx, "osrm.FetchRoute")(&err)

	// OSRM takes waypoints in lon,lat order.
	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%f,%f;%f,%f",
		p.baseURL, p.profile, from.Lon, from.Lat, to.Lon, to.Lat,
	)

	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("overview", "full")
		q.Set("geometries", "geojson")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		// OSRM reports "no route" as a 400 with code NoRoute.
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest && strings.Contains(se.Body, `"NoRoute"`) {
			return domain.Route{}, domain.ErrNoRouteFound
		}
		return domain.Route{}, fmt.Errorf("%w: route request: %v", domain.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Route{}, fmt.Errorf("%w: decode route response: %v", domain.ErrLookupFailed, err)
	}

	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return domain.Route{}, domain.ErrNoRouteFound
	}

	best := decoded.Routes[0]
	if len(best.Geometry.Coordinates) < 2 {
		return domain.Route{}, fmt.Errorf("%w: route geometry has %d points", domain.ErrLookupFailed, len(best.Geometry.Coordinates))
	}
	if best.Distance < 0 || best.Duration < 0 {
		return domain.Route{}, fmt.Errorf("%w: negative route metrics", domain.ErrLookupFailed)
	}

	path := make([]domain.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) != 2 {
			return domain.Route{}, fmt.Errorf("%w: invalid coordinate pair in geometry", domain.ErrLookupFailed)
		}
		// GeoJSON is lon,lat; flip for internal use.
		path = append(path, domain.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return domain.Route{
		Path:            path,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
	}, nil
}
