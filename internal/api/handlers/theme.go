package handlers

import (
	"log"
	"net/http"

	"map-route-service/internal/adapters/prefs"
	"map-route-service/internal/api/dto"
	"map-route-service/internal/ports"
)

type ThemeHandler struct {
	Prefs ports.PreferenceStore
}

// Handle dispatches GET and PUT on /theme. The theme persists across
// restarts alongside history.
func (h *ThemeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *ThemeHandler) get(w http.ResponseWriter, r *http.Request) {
	theme, ok, err := h.Prefs.Get(r.Context(), prefs.KeyTheme)
	if err != nil {
		log.Printf("theme read failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		theme = prefs.ThemeStreet
	}
	writeJSON(w, r, http.StatusOK, dto.ThemeResponse{Theme: theme})
}

func (h *ThemeHandler) put(w http.ResponseWriter, r *http.Request) {
	var req dto.ThemeRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if !prefs.ValidTheme(req.Theme) {
		writeError(w, r, http.StatusBadRequest, "unknown theme")
		return
	}

	if err := h.Prefs.Set(r.Context(), prefs.KeyTheme, req.Theme); err != nil {
		log.Printf("theme write failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ThemeResponse{Theme: req.Theme})
}
