// Package server assembles the storefront HTTP surface.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/cart"
	"github.com/joao-fontenele/storefront/internal/catalog"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/httpapi"
	"github.com/joao-fontenele/storefront/internal/media"
	"github.com/joao-fontenele/storefront/internal/orders"
	"github.com/joao-fontenele/storefront/internal/telemetry"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Auth       *auth.Handler
	Catalog    *catalog.Handler
	Cart       *cart.Handler
	Orders     *orders.Handler
	Middleware *auth.Middleware
	ImagesDir  string
	Metrics    http.Handler
	DB         Pinger
	Logger     *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}
	authed := d.Middleware.Authenticate
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return d.Middleware.RequireRole(domain.RoleAdmin, h)
	}

	route("POST /api/Auth/register", d.Auth.HandleRegister)
	route("POST /api/Auth/login", d.Auth.HandleLogin)

	route("GET /api/Category", d.Catalog.HandleListCategories)
	route("GET /api/Category/{id}", d.Catalog.HandleGetCategory)
	route("POST /api/Category", admin(d.Catalog.HandleCreateCategory))
	route("PUT /api/Category/{id}", admin(d.Catalog.HandleUpdateCategory))
	route("DELETE /api/Category/{id}", admin(d.Catalog.HandleDeleteCategory))

	route("GET /api/Product", d.Catalog.HandleListProducts)
	route("GET /api/Product/{id}", d.Catalog.HandleGetProduct)
	route("POST /api/Product", admin(d.Catalog.HandleCreateProduct))
	route("POST /api/Product/add-stock", admin(d.Catalog.HandleAddStock))
	route("DELETE /api/Product/{id}", admin(d.Catalog.HandleDeleteProduct))

	route("GET /api/Cart", authed(d.Cart.HandleMine))
	route("POST /api/Cart", authed(d.Cart.HandleAdd))
	route("DELETE /api/Cart/{id}", authed(d.Cart.HandleRemove))

	route("GET /api/Order", authed(d.Orders.HandleMine))
	route("POST /api/Order/checkout", authed(d.Orders.HandleCheckout))

	route("/api/", func(w http.ResponseWriter, r *http.Request) {
		httpapi.WriteError(w, d.Logger, http.StatusNotFound, "route not found")
	})

	mux.Handle("GET "+media.PublicPrefix, http.StripPrefix(media.PublicPrefix, http.FileServer(media.FileSystem(d.ImagesDir))))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}
	route("GET /healthz", healthz(d.DB, d.Logger))

	return otelhttp.NewHandler(httpapi.Recover(d.Logger, mux), "storefront",
		otelhttp.WithSpanNameFormatter(telemetry.SpanName),
	)
}

func healthz(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Error("health check failed", "error", err)
				httpapi.WriteError(w, logger, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		httpapi.WriteOK(w, logger, "ok", nil)
	}
}
