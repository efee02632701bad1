package poi

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

// OverpassPOIProvider queries the Overpass spatial database for tagged
// elements inside a bounding box. Nodes carry their own coordinate;
// ways and relations are resolved through their reported center.
type OverpassPOIProvider struct {
	client  *httpx.Client
	baseURL string
}

func NewOverpassPOIProvider(baseURL string, timeout time.Duration) *OverpassPOIProvider {
	if baseURL == "" {
		baseURL = "https://overpass-api.de"
	}
	return &OverpassPOIProvider{
		client:  httpx.New(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type overpassElement struct {
	Type   string   `json:"type"`
	ID     int64    `json:"id"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// buildQuery unions node, way and relation for the category tag over
// the region, with "out center" so aggregates report a center point.
func buildQuery(region domain.BoundingRegion, category domain.POICategory) string {
	key, value := category.Tag()
	bbox := fmt.Sprintf("%f,%f,%f,%f", region.South, region.West, region.North, region.East)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s[%s=%s](%s);\n", kind, key, value, bbox)
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}

func (p *OverpassPOIProvider) FetchPOIs(
	ctx context.Context,
	region domain.BoundingRegion,
	category domain.POICategory,
) (_ []domain.PointOfInterest, err error) {
	defer obs.Time(ctx, "overpass.FetchPOIs")(&err)

	endpoint := p.baseURL + "/api/interpreter"
	query := buildQuery(region, category)

	resp, err := p.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(query))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "text/plain")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: poi request: %v", domain.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode poi response: %v", domain.ErrLookupFailed, err)
	}

	out := make([]domain.PointOfInterest, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		coord, ok := resolveCoordinate(el)
		if !ok {
			// No direct point and no center: drop the element.
			continue
		}

		id := el.Type + "/" + strconv.FormatInt(el.ID, 10)
		name := el.Tags["name"]
		if name == "" {
			name = string(category) + " " + id
		}

		attrs := make(map[string]string, len(el.Tags))
		for k, v := range el.Tags {
			if k == "name" {
				continue
			}
			attrs[k] = v
		}

		out = append(out, domain.PointOfInterest{
			ID:         id,
			Name:       name,
			Coordinate: domain.Coordinate{Lat: coord[0], Lon: coord[1]},
			Category:   category,
			Attributes: attrs,
		})
	}

	return out, nil
}

func resolveCoordinate(el overpassElement) ([2]float64, bool) {
	if el.Lat != nil && el.Lon != nil {
		return [2]float64{*el.Lat, *el.Lon}, true
	}
	if el.Center != nil {
		return [2]float64{el.Center.Lat, el.Center.Lon}, true
	}
	return [2]float64{}, false
}
