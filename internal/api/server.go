package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sjsage522/dealbite/internal/deals"
	"sjsage522/dealbite/internal/model"
	"sjsage522/dealbite/internal/store"
	"sjsage522/dealbite/logger"
)

// DealService is the read and write surface served over HTTP
type DealService interface {
	Refresh(ctx context.Context, restaurant, market string) (int, error)
	List(ctx context.Context, f store.Filter) ([]model.ScoredDeal, error)
	Best(ctx context.Context, market, restaurant string) (deals.BestResult, error)
}

type Server struct {
	router  *chi.Mux
	service DealService
	log     *logger.Logger
}

func NewServer(service DealService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     logger.ForServer(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/deals", s.handleListDeals)
	s.router.Get("/deals/best", s.handleBestDeal)
	s.router.Post("/refresh", s.handleRefresh)
}

func (s *Server) Router() http.Handler {
	return s.router
}

// requestLogger logs one line per request through the structured logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("Request served")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
