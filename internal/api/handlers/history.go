package handlers

import (
	"errors"
	"log"
	"net/http"

	"map-route-service/internal/api/dto"
	"map-route-service/internal/domain"
	"map-route-service/internal/ports"
)

type HistoryHandler struct {
	Store ports.HistoryStore
}

// Handle dispatches GET (list, most recent first) and DELETE
// (clear-all) on /history.
func (h *HistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.List(r.Context())
	if err != nil {
		log.Printf("history list failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromHistory(entries))
}

func (h *HistoryHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Clear(r.Context()); err != nil {
		// A degraded persist still cleared the in-memory state.
		if !errors.Is(err, domain.ErrPersistenceDegraded) {
			log.Printf("history clear failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		log.Printf("history degraded: %v", err)
	}
	writeJSON(w, r, http.StatusOK, dto.ListHistoryResponse{Entries: []dto.HistoryEntryResponse{}})
}
