// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Redactle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/api/health", "/debug/corpus".
//   - Quiz endpoints: random quiz, quiz of the day, answer reveal, guess check.
//
// Notes:
//   - The corpus is injected as a store.Provider and loaded lazily on first use.
//   - Every failure leaves the handler as a JSON {error, message} body.
//   - Unknown quiz ids are an expected player outcome and only logged at debug.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/apps/go-server/internal/quiz"
	"github.com/robalobadob/redactle/apps/go-server/internal/store"
)

// Config holds server options that are not routes.
type Config struct {
	ClientOrigin   string        // single credentialed CORS origin
	DailySalt      string        // HMAC key for the quiz of the day
	RequestTimeout time.Duration // per-request handler bound
}

func (c Config) withDefaults() Config {
	if c.ClientOrigin == "" {
		c.ClientOrigin = "http://localhost:5173"
	}
	if c.DailySalt == "" {
		c.DailySalt = "local_dev_salt"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	return c
}

// Server bundles router, corpus provider, and options.
type Server struct {
	r      *chi.Mux
	corpus store.Provider
	cfg    Config
	now    func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(corpus store.Provider, cfg Config) *Server {
	s := &Server{r: chi.NewRouter(), corpus: corpus, cfg: cfg.withDefaults(), now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                     // add X-Request-ID
	s.r.Use(chimw.RealIP)                        // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))         // request-scoped logger
	s.r.Use(accessLog)                           // one line per request
	s.r.Use(chimw.Recoverer)                     // recover from panics
	s.r.Use(chimw.Timeout(s.cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                     // default JSON responses
	s.r.Use(cors(s.cfg.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"redactle-go","endpoints":["/api/health","GET /api/quiz/","GET /api/quiz/daily","GET /api/quiz/:id/answer","POST /api/quiz/:id/guess"]}`))
	})
	s.r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.r.Get("/debug/corpus", s.handleCorpusStats)

	// --- quiz ---
	s.r.Route("/api/quiz", func(r chi.Router) {
		r.Get("/", s.handleRandomQuiz)
		r.Get("/daily", s.handleDailyQuiz)
		r.Get("/{id}/answer", s.handleAnswer)
		r.Post("/{id}/guess", s.handleGuess)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "No route for "+r.URL.Path)
	})

	return s
}

// ServeHTTP lets the Server be used directly as an http.Handler (and in tests).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router.
func (s *Server) Router() chi.Router { return s.r }

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return hs.Shutdown(shutdownCtx)
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.DebugLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})

// ------------------------------ QUIZ ---------------------------------------

// loadCorpus resolves the corpus or writes a 500 and returns nil.
func (s *Server) loadCorpus(w http.ResponseWriter, r *http.Request) *quiz.Corpus {
	c, err := s.corpus.Corpus(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("corpus unavailable")
		writeError(w, http.StatusInternalServerError, "Failed to load quiz data", err.Error())
		return nil
	}
	return c
}

// handleRandomQuiz returns a uniformly random quiz without solutions.
func (s *Server) handleRandomQuiz(w http.ResponseWriter, r *http.Request) {
	c := s.loadCorpus(w, r)
	if c == nil {
		return
	}
	v, err := c.RandomQuiz()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("random quiz")
		writeError(w, http.StatusInternalServerError, "Failed to get random quiz", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleAnswer reveals every solution for a quiz.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	c := s.loadCorpus(w, r)
	if c == nil {
		return
	}
	id := chi.URLParam(r, "id")
	a, err := c.Answer(id)
	if errors.Is(err, quiz.ErrNotFound) {
		s.notFound(w, r, id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quiz answer", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// guessReq is the POST /api/quiz/{id}/guess payload.
type guessReq struct {
	Guess *string `json:"guess"`
}

// handleGuess checks a guess and reveals the matching placeholder, if any.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Guess == nil || *req.Guess == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "Guess must be a non-empty string")
		return
	}
	c := s.loadCorpus(w, r)
	if c == nil {
		return
	}
	id := chi.URLParam(r, "id")
	m, err := c.CheckGuess(id, *req.Guess)
	if errors.Is(err, quiz.ErrNotFound) {
		s.notFound(w, r, id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check guess", err.Error())
		return
	}
	hlog.FromRequest(r).Debug().
		Str("quiz", id).
		Bool("correct", m.Correct).
		Str("mask", m.Token).
		Msg("guess checked")
	writeJSON(w, http.StatusOK, m.Response())
}

// handleCorpusStats reports loaded counts.
func (s *Server) handleCorpusStats(w http.ResponseWriter, r *http.Request) {
	c := s.loadCorpus(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sources": c.Sources(), "entries": c.Len()})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, id string) {
	hlog.FromRequest(r).Debug().Str("quiz", id).Msg("unknown quiz id")
	writeError(w, http.StatusNotFound, "Quiz not found", "No quiz found with id: "+id)
}

// ------------------------------- util --------------------------------------

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, label, msg string) {
	writeJSON(w, status, errorRes{Error: label, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}
