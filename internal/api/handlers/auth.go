package handlers

import (
	"net/http"

	"map-route-service/internal/api/dto"
	"map-route-service/internal/ports"
)

type AuthHandler struct {
	Auth ports.Authenticator
}

// Login exchanges a credential pair for a bearer token. The gate is a
// placeholder; once authorized, credentials are never consulted again.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.LoginRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	token, ok := h.Auth.Login(req.Username, req.Password)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.LoginResponse{Token: token})
}
