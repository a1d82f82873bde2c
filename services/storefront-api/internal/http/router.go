package httpx

import (
	"net/http"

	"gamezone/services/storefront-api/internal/http/handlers"
	"gamezone/shared/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Orders   *handlers.OrderHandler
	Users    *handlers.UserHandler
}

type Options struct {
	Log            zerolog.Logger
	Authenticator  Authenticator
	AllowedOrigins []string
}

func NewRouter(h *Handlers, opt Options) http.Handler {
	log := opt.Log
	authed := requireAuth(opt.Authenticator, log)
	admin := requireAdmin(log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware("storefront-api"))
	r.Use(requestLog(log))
	r.Use(recoverer(log))
	r.Use(cors(opt.AllowedOrigins))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(authed).Get("/me", h.Auth.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/featured", h.Products.Featured)
			r.Get("/{id}", h.Products.Get)
			r.Group(func(r chi.Router) {
				r.Use(authed, admin)
				r.Post("/", h.Products.Create)
				r.Put("/{id}", h.Products.Update)
				r.Delete("/{id}", h.Products.Delete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authed)
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.Add)
			r.Put("/items/{id}", h.Cart.SetQuantity)
			r.Delete("/items/{id}", h.Cart.Remove)
			r.Post("/checkout", h.Cart.Checkout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authed)
			r.Post("/", h.Orders.Create)
			r.Get("/mine", h.Orders.Mine)
			r.Get("/{id}", h.Orders.Get)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", h.Orders.List)
				r.Put("/{id}/status", h.Orders.UpdateStatus)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authed, admin)
			r.Get("/", h.Users.List)
			r.Get("/{id}/stats", h.Users.Stats)
			r.Put("/{id}/role", h.Users.ChangeRole)
			r.Delete("/{id}", h.Users.Delete)
		})
	})
	return r
}
