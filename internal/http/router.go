package http

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/clients"
	"github.com/mtlh01p/project-altar-server/internal/config"
	"github.com/mtlh01p/project-altar-server/internal/http/handlers"
	"github.com/mtlh01p/project-altar-server/internal/metrics"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
)

type Deps struct {
	Logger *logrus.Logger
	Cfg    config.Config

	Auth         *clients.AuthClient
	Products     *clients.ProductClient
	Inventory    *clients.InventoryClient
	Cart         *clients.CartClient
	Transactions *clients.TransactionClient
	Checkout     *checkout.Service

	// LoginLimiter throttles POST /api/login; nil disables it.
	LoginLimiter *middleware.RateLimiter

	// TrustedProxies may set the client address via forwarding headers.
	TrustedProxies []netip.Prefix

	HealthProbes []clients.HealthProbe
	Pingers      map[string]handlers.Pinger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP(d.TrustedProxies))
	r.Use(middleware.Logging(d.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.AccessToken)
	r.Use(middleware.RequireSession(middleware.GateOptions{RejectExpired: d.Cfg.RejectExpiredTokens}))

	health := &handlers.HealthHandler{Probes: d.HealthProbes, Pingers: d.Pingers}
	r.Get("/health", health.Gateway)
	r.Get("/health/upstreams", health.Upstreams)
	r.Handle("/metrics", metrics.Handler())

	auth := handlers.NewAuthHandler(d.Auth, d.Cfg.Production(), d.Logger)
	products := handlers.NewProductHandler(d.Products)
	inventory := handlers.NewInventoryHandler(d.Inventory)
	cart := handlers.NewCartHandler(d.Cart)
	tx := handlers.NewTransactionHandler(d.Transactions)
	co := handlers.NewCheckoutHandler(d.Checkout)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.Use(d.LoginLimiter.Handler)
			}
			r.Post("/login", auth.Login)
		})
		r.Post("/register", auth.Register)
		r.Post("/logout", auth.Logout)
		r.Get("/me", auth.Me)
		r.Get("/auth/me", auth.Me)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Get("/inventory/{inventoryId}", products.ByInventory)
			r.Get("/{productId}", products.Get)
			r.Put("/{productId}", products.Update)
			r.Delete("/{productId}", products.Delete)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", inventory.List)
			r.Post("/", inventory.Create)
			r.Get("/{inventoryId}", inventory.Get)
			r.Put("/{inventoryId}", inventory.Update)
			r.Delete("/{inventoryId}", inventory.Delete)
		})

		r.Get("/inventorylogs", inventory.Logs)
		r.Post("/inventorylogs", inventory.CreateLog)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.List)
			r.Post("/", cart.Create)
			r.Patch("/items/{itemId}", cart.UpdateItem)
			r.Delete("/items/{itemId}", cart.DeleteItem)
			r.Get("/{cartId}", cart.Items)
			r.Delete("/{cartId}", cart.Delete)
			r.Get("/{cartId}/items", cart.Items)
			r.Post("/{cartId}/items", cart.AddItem)
		})

		r.Get("/transactions", tx.List)
		r.Post("/transactions", tx.Create)

		r.Post("/checkout", co.Checkout)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteUpstreamError(w, r, http.StatusNotFound, "not found")
		})
	})

	r.NotFound(handlers.NewPagesHandler(d.Cfg.FrontendURL, d.Logger).ServeHTTP)

	return r
}
