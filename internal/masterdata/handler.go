package masterdata

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/youssef-benmansour/fuel-vivo/internal/platform/cache"
	"github.com/youssef-benmansour/fuel-vivo/internal/platform/httpx"
)

// CacheKeys are the reference-list cache entries; imports invalidate them.
var CacheKeys = []string{
	"refdata:prices", "refdata:products", "refdata:plants",
	"refdata:clients", "refdata:trucks", "refdata:tanks",
}

// Handler serves the read-only reference-data lists.
type Handler struct {
	logger *slog.Logger
	repo   Repository
	store  *cache.Store
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, repo Repository, store *cache.Store) *Handler {
	return &Handler{logger: logger, repo: repo, store: store}
}

// MountRoutes registers reference-data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/data/prices", h.listPrices)
	r.Get("/data/products", h.listProducts)
	r.Get("/data/plants", h.listPlants)
	r.Get("/data/clients", h.listClients)
	r.Get("/data/trucks", h.listTrucks)
	r.Get("/data/tanks", h.listTanks)
}

func (h *Handler) listPrices(w http.ResponseWriter, r *http.Request) {
	var prices []Price
	err := h.store.GetJSON(r.Context(), "refdata:prices", &prices, func(ctx context.Context) (any, error) {
		return h.repo.ListPrices(ctx)
	})
	h.respondList(w, "prices", prices, err)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var products []Product
	err := h.store.GetJSON(r.Context(), "refdata:products", &products, func(ctx context.Context) (any, error) {
		return h.repo.ListProducts(ctx)
	})
	h.respondList(w, "products", products, err)
}

func (h *Handler) listPlants(w http.ResponseWriter, r *http.Request) {
	var plants []Plant
	err := h.store.GetJSON(r.Context(), "refdata:plants", &plants, func(ctx context.Context) (any, error) {
		return h.repo.ListPlants(ctx)
	})
	h.respondList(w, "plants", plants, err)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	var clients []Client
	err := h.store.GetJSON(r.Context(), "refdata:clients", &clients, func(ctx context.Context) (any, error) {
		return h.repo.ListClients(ctx)
	})
	h.respondList(w, "clients", clients, err)
}

func (h *Handler) listTrucks(w http.ResponseWriter, r *http.Request) {
	var trucks []Truck
	err := h.store.GetJSON(r.Context(), "refdata:trucks", &trucks, func(ctx context.Context) (any, error) {
		return h.repo.ListTrucks(ctx)
	})
	h.respondList(w, "trucks", trucks, err)
}

func (h *Handler) listTanks(w http.ResponseWriter, r *http.Request) {
	var tanks []Tank
	err := h.store.GetJSON(r.Context(), "refdata:tanks", &tanks, func(ctx context.Context) (any, error) {
		return h.repo.ListTanks(ctx)
	})
	h.respondList(w, "tanks", tanks, err)
}

func (h *Handler) respondList(w http.ResponseWriter, entity string, data any, err error) {
	if err != nil {
		h.logger.Error("list reference data", slog.String("entity", entity), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}
