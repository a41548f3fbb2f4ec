package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the storefront routes. A nil gatherer leaves /metrics unmounted.
func NewRouter(handlers *Handlers, health http.HandlerFunc, gatherer prometheus.Gatherer, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(log),
		middleware.RequestID(log),
		middleware.Logging(log),
	)

	requireProfile := middleware.RequireProfile(handlers.tokens, handlers.cookieName, log)
	optionalProfile := middleware.OptionalProfile(handlers.tokens, handlers.cookieName, log)

	r.Get("/healthz", health)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Session
	r.Post("/session", handlers.CreateSession)

	// Products
	r.Get("/products", handlers.GetProducts)
	r.With(optionalProfile).Get("/products/{id}", handlers.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(requireProfile)

		r.Get("/recent", handlers.GetRecent)
		r.Get("/toasts", handlers.GetToasts)

		// Cart
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handlers.GetCart)
			r.Delete("/", handlers.ClearCart)
			r.Post("/items", handlers.AddToCart)
			r.Patch("/items/{key}", handlers.UpdateCartItem)
			r.Delete("/items/{key}", handlers.RemoveCartItem)
			r.Post("/quick-add/{id}", handlers.QuickAdd)
		})

		// Wishlist
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", handlers.GetWishlist)
			r.Post("/{id}/toggle", handlers.ToggleWishlist)
			r.Post("/{id}/move-to-cart", handlers.MoveToCart)
			r.Delete("/{id}", handlers.RemoveWishlist)
		})
	})

	return r
}
