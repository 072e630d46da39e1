// Package server exposes the recommendation engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/ranking"
	"github.com/ChiragAJain/shl-recommender/internal/recommender"
	"go.uber.org/zap"
)

const (
	defaultListenAddr = ":8000"
	defaultNResults   = 10
	maxNResults       = 10
	minQueryLength    = 3

	shutdownTimeout = 10 * time.Second
)

// Recommender is the engine surface the server depends on.
type Recommender interface {
	Recommend(ctx context.Context, rawQuery string, nResults int) (*recommender.Recommendation, error)
}

// Config holds server configuration.
type Config struct {
	Listen string
}

// Server serves the recommendation API.
type Server struct {
	httpServer *http.Server
	engine     Recommender
	catalogue  *catalogue.Catalogue
	logger     *zap.Logger
}

func New(cfg Config, engine Recommender, cat *catalogue.Catalogue, logger *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = defaultListenAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		engine:    engine,
		catalogue: cat,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /recommend", s.handleRecommendGet)
	mux.HandleFunc("POST /recommend", s.handleRecommendPost)

	s.httpServer = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

type healthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	AssessmentsLoaded int    `json:"assessments_loaded"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:            "healthy",
		Message:           "assessment recommendation api is running",
		AssessmentsLoaded: s.catalogue.Len(),
	})
}

type recommendRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

func (s *Server) handleRecommendGet(w http.ResponseWriter, r *http.Request) {
	req := recommendRequest{Query: r.URL.Query().Get("query")}

	if raw := r.URL.Query().Get("n_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "n_results must be an integer")
			return
		}
		req.NResults = n
	}

	s.recommend(w, r, req)
}

func (s *Server) handleRecommendPost(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err))
		return
	}

	s.recommend(w, r, req)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, req recommendRequest) {
	if len(strings.TrimSpace(req.Query)) < minQueryLength {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("query must be at least %d characters long", minQueryLength))
		return
	}

	if req.NResults == 0 {
		req.NResults = defaultNResults
	}
	if req.NResults < 1 || req.NResults > maxNResults {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("n_results must be between 1 and %d", maxNResults))
		return
	}

	rec, err := s.engine.Recommend(r.Context(), req.Query, req.NResults)
	if err != nil {
		if errors.Is(err, ranking.ErrConfig) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("recommendation failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":           rec.Query,
		"analysis":        rec.Analysis,
		"recommendations": rec.Results,
		"count":           len(rec.Results),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

// withCORS adds permissive CORS headers, matching the public demo deployment.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
