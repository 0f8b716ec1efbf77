package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

type Deps struct {
	Logger *zap.Logger

	Sessions *session.Registry
	Catalog  CatalogService
	Products ProductLookup
	Auth     AuthBackend

	HealthProbes []clients.HealthProbe

	UpstreamTimeout  time.Duration
	CookieSecure     bool
	CORSAllowOrigins []string
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := d.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cookie := middleware.SessionCookieOptions{Secure: d.CookieSecure}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(d.CORSAllowOrigins))

	health := &HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Self)
	r.Get("/health/upstreams", health.Upstreams)

	cartH := NewCartHandler(d.Products, timeout, logger)
	catalogH := NewCatalogHandler(d.Catalog, timeout, logger)
	authH := NewAuthHandler(d.Auth, d.Sessions, cookie, timeout, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(d.Sessions, cookie))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", cartH.GetCart)
			r.Put("/", cartH.UpdateCart)
			r.Delete("/", cartH.ClearCart)
			r.Post("/items", cartH.AddItem)
			r.Post("/items/{index}/increase", cartH.IncreaseQuantity)
			r.Post("/items/{index}/decrease", cartH.DecreaseQuantity)
			r.Delete("/items/{index}", cartH.RemoveItem)
			r.Post("/checkout", cartH.Checkout)
		})

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", catalogH.List)
			r.Get("/search", catalogH.Search)
			r.Get("/{id}", catalogH.Get)
			r.Post("/{id}/buy", catalogH.Buy)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", catalogH.Create)
				r.Put("/{id}", catalogH.Update)
				r.Delete("/{id}", catalogH.Delete)
				r.Put("/{id}/reduce-stock", catalogH.ReduceStock)
			})
		})

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", authH.Login)
			r.Post("/register", authH.Register)
			r.Post("/logout", authH.Logout)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Get("/session", authH.Session)
		})
		r.Get("/api/account", authH.Account)
	})

	return r
}
