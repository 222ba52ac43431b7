package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef-benmansour/fuel-vivo/internal/platform/httpx"
)

// RouteMounter is implemented by every feature handler.
type RouteMounter interface {
	MountRoutes(chi.Router)
}

// RouterParams wires handlers into the router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	OrderHandler  RouteMounter
	TripHandler   RouteMounter
	ImportHandler RouteMounter
	DataHandler   RouteMounter
}

// NewRouter assembles the HTTP router with the shared middleware chain.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(p.Logger, p.Config) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, h := range []RouteMounter{p.OrderHandler, p.TripHandler, p.ImportHandler, p.DataHandler} {
		if h != nil {
			h.MountRoutes(r)
		}
	}
	return r
}
