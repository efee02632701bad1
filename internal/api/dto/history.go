package dto

import (
	"time"

	"map-route-service/internal/domain"
)

type HistoryEntryResponse struct {
	ID          int64     `json:"id"`
	Start       string    `json:"start"`
	Destination string    `json:"destination"`
	StartLat    float64   `json:"start_lat"`
	StartLon    float64   `json:"start_lon"`
	DestLat     float64   `json:"dest_lat"`
	DestLon     float64   `json:"dest_lon"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListHistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

func FromHistory(entries []domain.HistoryEntry) ListHistoryResponse {
	res := ListHistoryResponse{Entries: make([]HistoryEntryResponse, 0, len(entries))}
	for _, e := range entries {
		res.Entries = append(res.Entries, HistoryEntryResponse{
			ID:          e.ID,
			Start:       e.StartQuery,
			Destination: e.DestQuery,
			StartLat:    e.StartCoordinate.Lat,
			StartLon:    e.StartCoordinate.Lon,
			DestLat:     e.DestCoordinate.Lat,
			DestLon:     e.DestCoordinate.Lon,
			CreatedAt:   e.CreatedAt,
		})
	}
	return res
}

type ThemeResponse struct {
	Theme string `json:"theme"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}
