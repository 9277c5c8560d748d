package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"blockpay/internal/http/handlers"
	"blockpay/internal/infra"
	"blockpay/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.Metrics,
	)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}

	// Health and metrics stay outside the rate limit.
	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

		// Public: anyone holding a plan identifier may inspect it, list its
		// payments, or price it out before paying.
		r.Get("/v1/quote", app.QuoteGet)
		r.Get("/v1/plans/{id}", app.PlansGet)
		r.Get("/v1/plans/{id}/payments", app.PaymentsList)

		// Authenticated: operations that act on behalf of a caller address.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Post("/v1/plans", app.PlansCreate)
			r.Get("/v1/plans", app.PlansListMine)
			r.Post("/v1/plans/{id}/payments", app.PaymentsCreate)
			r.Post("/v1/withdrawals", app.WithdrawalsCreate)
			r.Get("/v1/balance", app.BalanceGet)
		})
	})

	return r
}
