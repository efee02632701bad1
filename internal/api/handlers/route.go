package handlers

import (
	"errors"
	"net/http"

	"map-route-service/internal/api/dto"
	"map-route-service/internal/services"
)

type RouteHandler struct {
	Orch *services.Orchestrator
}

// Handle dispatches GET (view snapshot) and POST (submit search) on
// /route. Search failures are part of the view state, not protocol
// errors: the response is always the resulting snapshot with any
// failure stage embedded.
func (h *RouteHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, r, http.StatusOK, dto.FromView(h.Orch.Snapshot()))
	case http.MethodPost:
		h.search(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *RouteHandler) search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	view, _ := h.Orch.SubmitSearch(r.Context(), req.Start, req.Destination)
	writeJSON(w, r, http.StatusOK, dto.FromView(view))
}

// Replay re-drives a recorded search without geocoding.
func (h *RouteHandler) Replay(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ReplayRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.EntryID == 0 {
		writeError(w, r, http.StatusBadRequest, "entry_id is required")
		return
	}

	view, err := h.Orch.ReplaySearch(r.Context(), req.EntryID)
	if errors.Is(err, services.ErrUnknownHistoryEntry) {
		writeError(w, r, http.StatusNotFound, "history entry not found")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromView(view))
}

// Reset returns the session to Idle on explicit navigation away.
func (h *RouteHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromView(h.Orch.Reset()))
}
