package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/MrJamesThe3rd/payday/internal/http/account"
	"github.com/MrJamesThe3rd/payday/internal/http/bill"
	"github.com/MrJamesThe3rd/payday/internal/http/dashboard"
	"github.com/MrJamesThe3rd/payday/internal/http/export"
	"github.com/MrJamesThe3rd/payday/internal/http/funds"
	"github.com/MrJamesThe3rd/payday/internal/http/httpx"
	"github.com/MrJamesThe3rd/payday/internal/http/ledger"
	"github.com/MrJamesThe3rd/payday/internal/http/routing"
	"github.com/MrJamesThe3rd/payday/internal/observability"
)

type Handlers struct {
	Accounts  *account.Handler
	Funds     *funds.Handler
	Bills     *bill.Handler
	Ledger    *ledger.Handler
	Dashboard *dashboard.Handler
	Routing   *routing.Handler
	Export    *export.Handler
}

type Options struct {
	Timeout        time.Duration
	AllowedOrigins []string
	SSLRedirect    bool
	// RateLimit requests per RateWindow, per client IP, on money-moving routes.
	RateLimit  int
	RateWindow time.Duration
	Metrics    *observability.Metrics
}

type healthResponse struct {
	Status string `json:"status"`
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.SSLRedirect,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(secureMiddleware.Handler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	router.Use(opts.Metrics.Middleware)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	limiter := func(next http.Handler) http.Handler { return next }
	if opts.RateLimit > 0 {
		limiter = httprate.Limit(opts.RateLimit, opts.RateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				httpx.JSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			}),
		)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", h.Accounts.Routes)

		r.Route("/funds", func(r chi.Router) {
			r.Use(limiter)
			h.Funds.Routes(r)
		})

		r.Route("/bills", func(r chi.Router) {
			h.Bills.Routes(r)
			h.Funds.BillRoutes(r.With(limiter))
		})

		r.Route("/ledger", h.Ledger.Routes)
		r.Route("/dashboard", h.Dashboard.Routes)
		r.Route("/routing", h.Routing.Routes)
		r.Route("/export", h.Export.Routes)
	})

	return router
}
