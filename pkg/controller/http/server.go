package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

// maxBodySize bounds request bodies of write endpoints
const maxBodySize = 1 << 20

type Server struct {
	router *chi.Mux
	risk   *usecase.RiskUseCase
	authUC AuthUseCase
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		risk:   uc.Risk,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		h := &riskHandler{uc: s.risk}
		descriptor := s.risk.Descriptor()
		routes := map[model.Operation]http.HandlerFunc{
			model.OperationList:   h.list,
			model.OperationGet:    h.get,
			model.OperationCreate: h.create,
			model.OperationUpdate: h.update,
			model.OperationDelete: h.delete,
		}
		for op, handler := range routes {
			ep, ok := descriptor.Endpoint(op)
			if !ok {
				continue
			}
			r.Method(ep.Method, ep.Path, handler)
		}

		r.Get("/api/risks/{id}/documents", h.documents)
		r.Get("/api/people/{id}", h.person)
		r.Get("/api/contexts/{id}", h.context)
		r.Get("/api/risk_objects/{id}", h.riskObject)
		r.Get("/api/auth/me", authMeHandler(s.risk))
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
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
