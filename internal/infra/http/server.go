package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"streaming-payments/internal/config"
	"streaming-payments/internal/infra/logging"
	red "streaming-payments/internal/infra/redis"
	"streaming-payments/internal/infra/security"
	"streaming-payments/internal/usecase"
)

// checkoutLockTTL bounds how long one in-flight checkout can exclude another
// for the same phone. Slightly above the poll budget (40 x 6s).
const checkoutLockTTL = 5 * time.Minute

type Server struct {
	cfg      *config.Config
	checkout usecase.CheckoutUseCase
	agents   usecase.AgentUseCase
	plans    usecase.PlanUseCase
	tokens   *security.WatchTokenService
	limiter  *red.RateLimiter
	locker   red.Locker
	log      *zerolog.Logger
	server   *http.Server
}

func NewServer(
	cfg *config.Config,
	checkout usecase.CheckoutUseCase,
	agents usecase.AgentUseCase,
	plans usecase.PlanUseCase,
	tokens *security.WatchTokenService,
	limiter *red.RateLimiter,
	locker red.Locker,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{
		cfg:      cfg,
		checkout: checkout,
		agents:   agents,
		plans:    plans,
		tokens:   tokens,
		limiter:  limiter,
		locker:   locker,
		log:      &l,
	}
}

// Router builds the chi mux. Checkout routes long-poll: the handler blocks
// through deposit and status polling, so a client disconnect cancels the poll
// via the request context.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/subscriptions", s.handleSubscriptionCheckout)

		r.Route("/agents", func(r chi.Router) {
			r.Post("/", s.handleAgentCheckout)
			r.Post("/renewals", s.handleRenewalCheckout)
			r.Post("/login", s.handleAgentLogin)
			r.Post("/withdrawals", s.handleWithdrawal)
			r.Post("/links", s.handleCreateLink)
			r.Get("/{id}/links", s.handleListLinks)
		})

		r.Route("/shared/{code}", func(r chi.Router) {
			r.Get("/", s.handleSharedLink)
			r.Post("/purchases", s.handlePurchase)
		})

		r.Get("/watch/verify", s.handleVerifyWatch)
		r.Get("/plans", s.handleListPlans)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Router(),
		// No blanket write timeout: checkout responses can take the whole
		// poll budget to produce.
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := logging.WithRequestID(r.Context(), requestID)
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// guardCheckout applies the per-phone rate limit and in-flight lock. The
// returned release func is a no-op when admission failed.
func (s *Server) guardCheckout(ctx context.Context, phone string) (func(), error) {
	ok, err := s.limiter.Allow(ctx, red.PhoneCheckoutKey(phone), s.cfg.Server.CheckoutLimit, s.cfg.Server.CheckoutWindow)
	if err != nil {
		// Redis being down should not block payments.
		s.log.Warn().Err(err).Msg("rate limiter unavailable, admitting checkout")
	} else if !ok {
		return func() {}, errTooManyCheckouts
	}

	token, err := s.locker.TryLock(ctx, red.PhoneLockKey(phone), checkoutLockTTL)
	if err != nil {
		return func() {}, err
	}
	return func() {
		if err := s.locker.Unlock(context.Background(), red.PhoneLockKey(phone), token); err != nil {
			s.log.Warn().Err(err).Msg("checkout lock release failed")
		}
	}, nil
}
