package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerResolutionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players/resolve", handler.ResolvePlayer)
	mux.HandleFunc("POST /v1/games/resolve", handler.ResolveGame)
	mux.HandleFunc("POST /v1/players/validate", handler.ValidatePlayer)
	mux.HandleFunc("POST /v1/games/validate", handler.ValidateGame)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
}

func registerInternalImportRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/import/players", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ImportPlayers)))
	mux.Handle("POST /v1/internal/import/games", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ImportGames)))
}
