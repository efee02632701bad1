package dto

import (
	"map-route-service/internal/domain"
	"map-route-service/internal/services"
)

type SearchRequest struct {
	Start       string `json:"start"`
	Destination string `json:"destination"`
}

type ReplayRequest struct {
	EntryID int64 `json:"entry_id"`
}

type CategoryRequest struct {
	Category string `json:"category"`
}

type PlaceResponse struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"display_name,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

type RegionResponse struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type POIResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Category   string            `json:"category"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type FailureResponse struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ViewResponse is the full view snapshot returned by every
// state-changing route operation and by GET /route.
type ViewResponse struct {
	State          string           `json:"state"`
	Start          *PlaceResponse   `json:"start,omitempty"`
	Destination    *PlaceResponse   `json:"destination,omitempty"`
	Path           [][2]float64     `json:"path,omitempty"`
	Distance       string           `json:"distance,omitempty"`
	Duration       string           `json:"duration,omitempty"`
	Region         *RegionResponse  `json:"region,omitempty"`
	ActiveCategory string           `json:"active_category,omitempty"`
	POIs           []POIResponse    `json:"pois"`
	Failure        *FailureResponse `json:"failure,omitempty"`
}

// FromView converts an orchestrator snapshot to its wire shape.
func FromView(v services.View) ViewResponse {
	res := ViewResponse{
		State:          string(v.State),
		Distance:       v.DistanceDisplay,
		Duration:       v.DurationDisplay,
		ActiveCategory: string(v.ActiveCategory),
		POIs:           make([]POIResponse, 0, len(v.POIs)),
	}

	res.Start = placeResponse(v.Start)
	res.Destination = placeResponse(v.Dest)

	if v.Route != nil {
		res.Path = make([][2]float64, 0, len(v.Route.Path))
		for _, c := range v.Route.Path {
			res.Path = append(res.Path, [2]float64{c.Lat, c.Lon})
		}
	}
	if v.Region != nil {
		res.Region = &RegionResponse{
			South: v.Region.South,
			West:  v.Region.West,
			North: v.Region.North,
			East:  v.Region.East,
		}
	}
	for _, p := range v.POIs {
		res.POIs = append(res.POIs, POIResponse{
			ID:         p.ID,
			Name:       p.Name,
			Lat:        p.Coordinate.Lat,
			Lon:        p.Coordinate.Lon,
			Category:   string(p.Category),
			Attributes: p.Attributes,
		})
	}
	if v.LastFailure != nil {
		res.Failure = &FailureResponse{
			Stage:   v.LastFailure.Stage,
			Message: v.LastFailure.Message,
		}
	}
	return res
}

func placeResponse(p *domain.ResolvedPlace) *PlaceResponse {
	if p == nil {
		return nil
	}
	return &PlaceResponse{
		Query:       p.Query,
		DisplayName: p.DisplayName,
		Lat:         p.Coordinate.Lat,
		Lon:         p.Coordinate.Lon,
	}
}
