package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appanalysis "github.com/bryanwahyu/compliance-gateway/internal/application/analysis"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/middleware"
)

// Options wiring untuk NewRouter. Field nil = fitur dimatikan.
type Options struct {
	Service        *appanalysis.Service
	Auth           middleware.TokenValidator
	Logger         *zerolog.Logger
	Metrics        middleware.HTTPObserver
	MetricsHandler http.Handler
	HealthCheckers map[string]middleware.HealthChecker
	ReadyCheckers  map[string]middleware.HealthChecker
	RateLimiter    *middleware.RateLimiter
	CORSOrigins    []string
	MaxUploadBytes int64
}

type Router struct {
	svc       *appanalysis.Service
	maxUpload int64
}

func NewRouter(opts Options) http.Handler {
	r := &Router{svc: opts.Service, maxUpload: opts.MaxUploadBytes}
	if r.maxUpload <= 0 {
		r.maxUpload = appanalysis.DefaultMaxUploadBytes
	}

	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Logger(logger))
	mux.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		mux.Use(middleware.Metrics(opts.Metrics))
	}
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{FallbackHeader, RecordIDHeader, middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler(opts.ReadyCheckers))
	mux.Get("/live", middleware.LivenessHandler)
	if opts.MetricsHandler != nil {
		mux.Handle("/metrics", opts.MetricsHandler)
	}

	mux.Route("/analysis", func(rt chi.Router) {
		if opts.Auth != nil {
			rt.Use(middleware.Authenticate(opts.Auth))
		}
		if opts.RateLimiter != nil {
			rt.Use(middleware.RateLimit(opts.RateLimiter))
		}
		rt.With(middleware.RequirePrincipal).Post("/", r.wrap(r.handleSubmit))
		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Get("/{id}", r.wrap(r.handleDetail))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap memetakan error domain ke status HTTP
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		log := zerolog.Ctx(req.Context())

		var ve *domain.ValidationError
		var ee *domain.EngineError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error()})
		case errors.Is(err, domain.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
		case errors.Is(err, domain.ErrForbidden):
			writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Analisis tidak ditemukan"})
		case errors.As(err, &ee):
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: analysisFailedMessage, Details: ee.Details()})
		case errors.Is(err, domain.ErrMalformedPayload):
			writeJSON(w, http.StatusInternalServerError, errorBody{
				Error:   analysisFailedMessage,
				Details: "Backend analisis mengembalikan data yang tidak dikenali",
			})
		default:
			log.Error().Err(err).Msg("unhandled error")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Terjadi kesalahan pada server"})
		}
	}
}

const analysisFailedMessage = "Gagal menganalisis dokumen"

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewServer http.Server dengan timeout yang cukup untuk panggilan engine
func NewServer(addr string, h http.Handler, engineTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      engineTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
