package api

import (
	"net/http"

	"map-route-service/internal/api/handlers"
	"map-route-service/internal/ports"
	"map-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay
// unaware of concrete adapters). Everything except /health and /login
// sits behind the bearer gate.
func NewRouter(
	orch *services.Orchestrator,
	history ports.HistoryStore,
	preferences ports.PreferenceStore,
	auth ports.Authenticator,
) http.Handler {
	authHandler := &handlers.AuthHandler{Auth: auth}
	routeHandler := &handlers.RouteHandler{Orch: orch}
	poiHandler := &handlers.POIHandler{Orch: orch}
	historyHandler := &handlers.HistoryHandler{Store: history}
	themeHandler := &handlers.ThemeHandler{Prefs: preferences}

	gated := http.NewServeMux()
	gated.HandleFunc("/route", routeHandler.Handle)
	gated.HandleFunc("/route/replay", routeHandler.Replay)
	gated.HandleFunc("/reset", routeHandler.Reset)
	gated.HandleFunc("/pois", poiHandler.Handle)
	gated.HandleFunc("/history", historyHandler.Handle)
	gated.HandleFunc("/theme", themeHandler.Handle)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/login", authHandler.Login)
	mux.Handle("/", authMiddleware(auth, gated))

	return loggingMiddleware(mux)
}
