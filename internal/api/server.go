package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shiftpulse/shiftpulse/internal/middleware"
	"github.com/shiftpulse/shiftpulse/internal/services"
)

// Server exposes the engagement core over a thin JSON API. All domain rules
// live in the services; handlers only translate HTTP.
type Server struct {
	log       *zap.Logger
	auth      *middleware.Auth
	authSvc   *services.AuthService
	directory *services.DirectoryService
	ingest    *services.IngestService
	reports   *services.ReportService
	reveal    *services.RevealService
}

func NewServer(
	log *zap.Logger,
	auth *middleware.Auth,
	authSvc *services.AuthService,
	directory *services.DirectoryService,
	ingest *services.IngestService,
	reports *services.ReportService,
	reveal *services.RevealService,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:       log,
		auth:      auth,
		authSvc:   authSvc,
		directory: directory,
		ingest:    ingest,
		reports:   reports,
		reveal:    reveal,
	}
}

// Routes builds the router with the shared middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.NoStore)
	r.Use(s.auth.WithAuth)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Anonymous survey submission.
		r.Post("/responses", s.handleSubmitResponse)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/locations", s.handleListLocations)
			r.Post("/locations", s.handleCreateLocation)
			r.Get("/locations/{locationID}/report", s.handleLocationReport)
			r.Get("/reports/organization", s.handleOrganizationReport)
			r.Post("/responses/{responseID}/reveal", s.handleReveal)
		})
	})
	return r
}
