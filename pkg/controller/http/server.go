package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/privsec-lab/custodian/pkg/usecase"
	"github.com/privsec-lab/custodian/pkg/utils/logging"
)

// Server is the REST API surface over the use case layer
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Post("/", s.createCollection)
			r.Get("/", s.listCollections)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getCollection)
				r.Put("/", s.updateCollection)
				r.Get("/timeline", s.collectionTimeline)
				r.Post("/stage/process", s.processStage)
				r.Post("/stage/complete", s.completeStage)
			})
		})

		r.Put("/assessments/{id}", s.updateAssessment)

		r.Route("/breaches", func(r chi.Router) {
			r.Post("/", s.createBreach)
			r.Get("/", s.listBreaches)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getBreach)
				r.Put("/", s.updateBreach)
				r.Delete("/", s.deleteBreach)
				r.Put("/status", s.updateBreachStatus)
				r.Get("/risk", s.getRiskAssessment)
				r.Get("/compliance", s.getComplianceReport)
				r.Get("/timeline", s.breachTimeline)
				r.Get("/notifications", s.breachNotifications)
			})
		})

		r.Post("/notifications/{id}/send", s.sendNotification)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
