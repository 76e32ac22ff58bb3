package http

import (
	"net/http"

	"github.com/client-portal-api/internal/application/lookup"
	"github.com/client-portal-api/internal/application/ticket"
	"github.com/client-portal-api/internal/application/verification"
	"github.com/client-portal-api/internal/config"
	"github.com/client-portal-api/internal/transport/http/handler"
	appmiddleware "github.com/client-portal-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Codes:    deps.CodeRepo,
		Mailer:   deps.Mailer,
		SMS:      deps.SMSSender,
		Platform: deps.Platform,
	})
	lookupSvc := lookup.NewService(deps.ClientRepo)
	ticketSvc := ticket.NewService(deps.TicketRepo, verificationSvc)

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	lookupH := handler.NewLookupHandler(lookupSvc)
	ticketH := handler.NewTicketHandler(ticketSvc)
	clientH := handler.NewClientHandler(lookupSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/verification/request", verificationH.Request)
		r.With(sensitiveRL.Limit).Post("/verification/validate", verificationH.Validate)
		r.With(sensitiveRL.Limit).Post("/clients/lookup", lookupH.Lookup)
		r.With(sensitiveRL.Limit).Post("/tickets", ticketH.Submit)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/clients/me", clientH.Me)
			r.Get("/tickets", ticketH.List)
			r.Put("/tickets/{id}/close", ticketH.Close)
		})
	})

	return r
}
