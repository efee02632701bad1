package handlers

import (
	"errors"
	"net/http"

	"map-route-service/internal/api/dto"
	"map-route-service/internal/domain"
	"map-route-service/internal/services"
)

type POIHandler struct {
	Orch *services.Orchestrator
}

// Handle dispatches POST (select category) and DELETE (clear category)
// on /pois.
func (h *POIHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.selectCategory(w, r)
	case http.MethodDelete:
		writeJSON(w, r, http.StatusOK, dto.FromView(h.Orch.ClearCategory()))
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *POIHandler) selectCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// POI fetch failures show up as the snapshot's failure stage; the
	// route state is unaffected either way.
	view, err := h.Orch.SelectCategory(r.Context(), category)
	if errors.Is(err, services.ErrNoActiveRoute) {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromView(view))
}
