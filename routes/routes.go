package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/puckdrop/tournament-server/handlers"
	"github.com/puckdrop/tournament-server/middleware"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Tournament   *handlers.TournamentHandler
	Commissioner *handlers.CommissionerHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/session", h.Auth.LoginHandler)

	router.Route("/tournament", func(r chi.Router) {
		// Public dashboard routes
		r.Get("/", h.Tournament.GetHandler)
		r.Get("/standings", h.Tournament.StandingsHandler)
		r.Get("/matches", h.Tournament.ListMatchesHandler)

		// Organizer-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", h.Tournament.StartHandler)
			r.Delete("/", h.Tournament.ResetHandler)
			r.Post("/matches/{matchID}/score", h.Tournament.SubmitScoreHandler)
		})
	})

	router.Post("/commissioner/chat", h.Commissioner.ChatHandler)

	router.Get("/ws", h.WebSocket.ServeWs)

	return router
}
