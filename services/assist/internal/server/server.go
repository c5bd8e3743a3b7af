package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"studymate/internal/ratelimit"
	"studymate/internal/util"
	"studymate/pkg/domain"
	"studymate/services/assist/internal/app"
)

const (
	maxBodyBytes = 1 << 20

	msgMissingFields     = "Prompt and mode are required."
	msgGenerationFailed  = "AI generation failed."
	msgGenerationTimeout = "AI generation timed out."
)

// Generator is the relay the server hands validated requests to.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.Generation, error)
}

// Limiter decides whether a client may issue another generation.
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App Generator
	// Limiter is optional; nil disables rate limiting.
	Limiter            Limiter
	TrustedProxies     *util.TrustedProxies
	CORSAllowedOrigins []string
}

// Server exposes the generation endpoint.
type Server struct {
	app            Generator
	limiter        Limiter
	trustedProxies *util.TrustedProxies
	router         chi.Router
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: generator required")
	}
	s := &Server{
		app:            cfg.App,
		limiter:        cfg.Limiter,
		trustedProxies: cfg.TrustedProxies,
		router:         chi.NewRouter(),
	}
	s.routes(cfg.CORSAllowedOrigins)
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes(corsOrigins []string) {
	r := s.router
	r.Use(util.WithRequestID)
	r.Use(util.WithRequestLog)
	r.Use(middleware.Recoverer)
	r.Use(util.WithSecurityHeaders)
	r.Use(util.WithCORS(corsOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get(domain.PathHealth, s.handleHealth)
	r.Get(domain.PathModes, s.handleModes)
	r.With(s.rateLimit).Post(domain.PathGenerate, s.handleGenerate)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.Mode{"modes": domain.Modes()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" || req.Mode == "" {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	gen, err := s.app.Generate(r.Context(), domain.GenerationRequest{
		Prompt: req.Prompt,
		Mode:   domain.Mode(req.Mode),
	})
	if err != nil {
		logger := util.LoggerFromContext(r.Context())
		var genErr *app.GenerationError
		kind := app.KindProvider
		if errors.As(err, &genErr) {
			kind = genErr.Kind
		}
		logger.Error("generation failed", "mode", req.Mode, "kind", kind, "err", errors.Unwrap(err))
		if errors.Is(err, app.ErrGenerationTimeout) {
			writeError(w, http.StatusGatewayTimeout, msgGenerationTimeout)
			return
		}
		writeError(w, http.StatusInternalServerError, msgGenerationFailed)
		return
	}
	w.Header().Set("X-Generation-Id", gen.ID)
	writeJSON(w, http.StatusOK, generateResponse{Result: gen.Result})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := util.ClientIP(r, s.trustedProxies)
		decision, err := s.limiter.Allow(r.Context(), clientIP)
		if err != nil {
			util.LoggerFromContext(r.Context()).Warn("rate limiter unavailable", "client_ip", clientIP, "err", err)
		}
		if decision.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		if !decision.Allowed {
			if !decision.ResetAt.IsZero() {
				secs := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
}

type generateResponse struct {
	Result string `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
