package handlers

import "net/http"

func Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
