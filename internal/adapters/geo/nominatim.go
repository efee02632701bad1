package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"map-route-service/internal/domain"
	"map-route-service/internal/platform/httpx"
	"map-route-service/internal/platform/obs"
)

// NominatimGeocoder resolves free-text place names via the Nominatim
// search API. The first-ranked candidate is authoritative; no local
// re-ranking. Safe for concurrent use.
type NominatimGeocoder struct {
	client    *httpx.Client
	baseURL   string
	userAgent string
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimGeocoder{
		client:    httpx.New(timeout),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// Nominatim serializes coordinates as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Resolve(ctx context.Context, query string) (_ domain.ResolvedPlace, err error) {
	defer obs.Time(ctx, "nominatim.Resolve")(&err)

	norm := strings.Join(strings.Fields(query), " ")
	if norm == "" {
		return domain.ResolvedPlace{}, domain.ErrEmptyInput
	}

	endpoint := g.baseURL + "/search"

	resp, err := g.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if g.userAgent != "" {
			req.Header.Set("User-Agent", g.userAgent)
		}

		q := req.URL.Query()
		q.Set("format", "json")
		q.Set("q", norm)
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: geocode %q: %v", domain.ErrLookupFailed, norm, err)
	}
	defer resp.Body.Close()

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: decode geocode response: %v", domain.ErrLookupFailed, err)
	}

	if len(results) == 0 {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: %q", domain.ErrNotFound, norm)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: parse latitude %q: %v", domain.ErrLookupFailed, first.Lat, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: parse longitude %q: %v", domain.ErrLookupFailed, first.Lon, err)
	}

	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return domain.ResolvedPlace{}, fmt.Errorf("%w: coordinate out of range for %q", domain.ErrLookupFailed, norm)
	}

	return domain.ResolvedPlace{
		Query:       norm,
		Coordinate:  coord,
		DisplayName: first.DisplayName,
	}, nil
}
