package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careerlens/careerlens-api/internal/advisor"
	"github.com/careerlens/careerlens-api/internal/assessment"
	"github.com/careerlens/careerlens-api/internal/catalog"
	"github.com/careerlens/careerlens-api/internal/config"
	"github.com/careerlens/careerlens-api/internal/practice"
	"github.com/careerlens/careerlens-api/internal/services"
	"github.com/careerlens/careerlens-api/internal/storage"
)

// Deps are the services the HTTP layer dispatches to
type Deps struct {
	Catalog     *catalog.Service
	Assessments *assessment.Service
	Advisor     *advisor.Advisor
	Practice    *practice.Manager
	Monitor     *storage.Monitor
	Services    *services.Registry
}

// Server represents the HTTP API server
type Server struct {
	config   *config.Config
	router   *chi.Mux
	validate *validator.Validate

	catalog     *catalog.Service
	assessments *assessment.Service
	advisor     *advisor.Advisor
	practice    *practice.Manager
	monitor     *storage.Monitor
	services    *services.Registry
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config:      cfg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		catalog:     deps.Catalog,
		assessments: deps.Assessments,
		advisor:     deps.Advisor,
		practice:    deps.Practice,
		monitor:     deps.Monitor,
		services:    deps.Services,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// Routes lists every registered "METHOD /pattern" in registration order
func (s *Server) Routes() []string {
	var routes []string
	chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/*" {
			routes = append(routes, method+" "+strings.TrimSuffix(route, "/*"))
		}
		return nil
	})
	return routes
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(s.recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(timeout(60 * time.Second))

		r.Route("/companies", func(r chi.Router) {
			r.With(s.requireDatabase(true)).Get("/", s.handleListCompanies)
			r.With(s.requireDatabase(false)).Get("/{id}", s.handleGetCompany)
		})

		r.Route("/roles", func(r chi.Router) {
			r.With(s.requireDatabase(true)).Get("/", s.handleListRoles)
			r.With(s.requireDatabase(false)).Get("/{id}", s.handleGetRole)
		})

		r.Route("/skills", func(r chi.Router) {
			r.With(s.requireDatabase(true)).Get("/", s.handleListSkills)
			r.With(s.requireDatabase(false)).Get("/{id}", s.handleGetSkill)
		})

		r.Route("/questions", func(r chi.Router) {
			r.With(s.requireDatabase(true)).Get("/", s.handleListQuestions)
			r.With(s.requireDatabase(true)).Get("/random", s.handleRandomQuestions)
			r.With(s.requireDatabase(false)).Get("/{id}", s.handleGetQuestion)
			r.With(s.requireDatabase(false)).Post("/{id}/validate", s.handleValidateAnswer)
		})

		r.With(s.requireDatabase(true)).Get("/hrquestions/random", s.handleRandomHRQuestions)
		r.With(s.requireDatabase(true)).Get("/techquestions/random", s.handleRandomTechQuestions)

		r.Route("/assessments", func(r chi.Router) {
			r.Use(s.requireDatabase(false))
			r.Get("/", s.handleListAssessments)
			r.Post("/", s.handleCreateAssessment)
			r.Get("/{sessionId}", s.handleGetAssessment)
			r.Post("/{sessionId}/submit", s.handleSubmitAssessment)
		})

		r.Route("/interview", func(r chi.Router) {
			r.Post("/feedback", s.handleInterviewFeedback)
			r.Post("/questions/generate", s.handleGenerateInterviewQuestions)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleOpenInterview)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetInterview)
					r.Post("/media", s.handleInterviewMedia)
					r.Post("/record/start", s.handleStartRecording)
					r.Post("/record/stop", s.handleStopRecording)
					r.Put("/recordings/{recordingId}", s.handleAttachClientRef)
					r.Post("/speak", s.handleSpeak)
					r.Post("/next", s.handleInterviewNext)
					r.Post("/previous", s.handleInterviewPrevious)
					r.Post("/end", s.handleEndInterview)
					r.Get("/ws", s.handleInterviewFeed)
				})
			})
		})

		r.Post("/coach/chat", s.handleCoachChat)
		r.Post("/openai/generate-questions", s.handleGenerateTestQuestions)

		r.Route("/practice", func(r chi.Router) {
			r.Post("/", s.handleStartTest)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTest)
				r.Post("/answer", s.handleSelectAnswer)
				r.Post("/run", s.handleRunCode)
				r.Post("/submit-code", s.handleSubmitCode)
				r.Post("/navigate", s.handleNavigate)
				r.Post("/submit", s.handleSubmitTest)
				r.Get("/results", s.handleTestResults)
				r.Get("/ws", s.handleTestFeed)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
