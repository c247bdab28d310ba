package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/garage-meetup-api/internal/auth"
	"github.com/gdg-garage/garage-meetup-api/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(r *chi.Mux, cfg *config.Config, authHandler *auth.AuthHandler, eventHandler *EventHandler, voteHandler *VoteHandler, apiKeyHandler *APIKeyHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(corsMiddleware(cfg.FrontendURL))
	}

	apiConfig := huma.DefaultConfig("Garage Meetup API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authHandler.AuthMiddleware)
		api := humachi.New(r, apiConfig)
		secured := func(o *huma.Operation) {
			o.Security = []map[string][]string{{"cookieAuth": {}}}
		}

		huma.Get(api, "/me", authHandler.HandleMe, secured)

		huma.Post(api, "/events", eventHandler.HandleCreateEvent, secured)
		huma.Get(api, "/events", eventHandler.HandleListEvents, secured)
		huma.Get(api, "/events/{id}", eventHandler.HandleGetEvent, secured)
		huma.Put(api, "/events/{id}", eventHandler.HandleUpdateEvent, secured)
		huma.Delete(api, "/events/{id}", eventHandler.HandleDeleteEvent, secured)
		huma.Post(api, "/events/{id}/vote", voteHandler.HandleVote, secured)
		huma.Post(api, "/events/{id}/close", eventHandler.HandleCloseVoting, secured)

		huma.Post(api, "/api-keys", apiKeyHandler.HandleCreate, secured)
		huma.Get(api, "/api-keys", apiKeyHandler.HandleList, secured)
		huma.Delete(api, "/api-keys/{id}", apiKeyHandler.HandleDelete, secured)
	})
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-KEY")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
