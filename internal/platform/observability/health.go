package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jbplumbing/autopost/internal/core/domain"
	"github.com/jbplumbing/autopost/internal/platform/worker"
	"github.com/jbplumbing/autopost/internal/storage"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	// maxTriggerLimit bounds one manual trigger request.
	maxTriggerLimit = 5

	// triggerStagger spaces consecutive posts in one trigger request so
	// the backends are not hit back to back.
	triggerStagger = 2 * time.Second
)

// Generator runs generation jobs for the manual trigger endpoint.
type Generator interface {
	GeneratePost(ctx context.Context, jobType domain.JobType) domain.Result
}

type Server struct {
	db            *storage.DB
	port          int
	triggerSecret string
	generator     Generator
	stagger       time.Duration
	logger        *zerolog.Logger
}

func NewServer(db *storage.DB, port int, triggerSecret string, generator Generator, logger *zerolog.Logger) *Server {
	return &Server{
		db:            db,
		port:          port,
		triggerSecret: triggerSecret,
		generator:     generator,
		stagger:       triggerStagger,
		logger:        logger,
	}
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("HTTP server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "DB error: %v", err)

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/generate", s.handleGenerate)

	return mux
}

type generateResponse struct {
	Generated int             `json:"generated"`
	Failed    int             `json:"failed"`
	Results   []domain.Result `json:"results"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

		return
	}

	if s.triggerSecret == "" || s.generator == nil {
		http.Error(w, "manual trigger disabled", http.StatusNotFound)

		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token != s.triggerSecret {
		http.Error(w, "unauthorized", http.StatusUnauthorized)

		return
	}

	limit := 1

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)

			return
		}

		limit = parsed
	}

	if limit > maxTriggerLimit {
		limit = maxTriggerLimit
	}

	resp := generateResponse{Results: make([]domain.Result, 0, limit)}

	for i := 0; i < limit; i++ {
		if i > 0 {
			if err := worker.Wait(r.Context(), s.stagger); err != nil {
				break
			}
		}

		result := s.generator.GeneratePost(r.Context(), domain.JobTypeManual)
		if result.Success {
			resp.Generated++
		} else {
			resp.Failed++
		}

		resp.Results = append(resp.Results, result)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode trigger response")
	}
}
