package main

import (
	"net/http"

	"github.com/AdamBeresnev/op-bracket/internal/httputil"
	"github.com/AdamBeresnev/op-bracket/internal/middleware"
	"github.com/AdamBeresnev/op-bracket/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type application struct {
	tournaments *service.TournamentService
	matches     *service.MatchService
}

func (app *application) routes(allowedOrigins []string, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", app.createTournament)
			r.Get("/", app.listTournaments)
			r.Get("/{id}", app.getTournament)
			r.Get("/{id}/status", app.getTournamentStatus)
		})

		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", app.getMatch)
			r.Get("/advancement", app.getAdvancement)
			r.Post("/start", app.startMatch)
			r.Post("/score", app.updateScore)
			r.Post("/result", app.reportResult)
		})
	})

	return r
}
