package importer

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/youssef-benmansour/fuel-vivo/internal/platform/httpx"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// ParseFunc turns an uploaded file into rows. Injected to keep the handler
// free of format concerns; fileparse.Parse satisfies it.
type ParseFunc func(name string, r io.Reader) ([]Row, error)

// Handler exposes the import endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	parse     ParseFunc
	maxUpload int64
}

// NewHandler builds a Handler. maxUpload caps multipart memory and file size.
func NewHandler(logger *slog.Logger, service *Service, parse ParseFunc, maxUpload int64) *Handler {
	return &Handler{logger: logger, service: service, parse: parse, maxUpload: maxUpload}
}

// MountRoutes registers the import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Get("/history", h.history)
		r.Post("/orders/trips", h.reconcileTrips)
		r.Post("/{type}", h.importEntities)
	})
}

// reconcileTrips accepts either a multipart file upload or a JSON body of
// already-parsed rows.
func (h *Handler) reconcileTrips(w http.ResponseWriter, r *http.Request) {
	fileName, rows, ok := h.readRows(w, r)
	if !ok {
		return
	}

	result, err := h.service.ReconcileTripOrders(r.Context(), fileName, rows)
	if err != nil {
		h.logger.Error("reconcile trip orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) importEntities(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if !KnownEntityType(typ) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown import type "+typ)
		return
	}
	fileName, rows, ok := h.readRows(w, r)
	if !ok {
		return
	}
	replace := r.URL.Query().Get("replace") == "true" || r.FormValue("replace") == "true"

	result, err := h.service.ImportEntities(r.Context(), typ, fileName, rows, replace)
	if err != nil {
		h.logger.Error("import entities", slog.String("type", typ), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r, 20, 100)
	records, total, err := h.service.History(r.Context(), page)
	if err != nil {
		h.logger.Error("list import history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if records == nil {
		records = []ImportRecord{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"history":     records,
		"total":       total,
		"page":        page.Number,
		"total_pages": page.TotalPages(int(total)),
	})
}

// readRows extracts rows from the request: a multipart "file" part is
// parsed, otherwise the body is decoded as {"file_name": ..., "rows": [...]}.
func (h *Handler) readRows(w http.ResponseWriter, r *http.Request) (string, []Row, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed multipart body")
			return "", nil, false
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "missing file part")
			return "", nil, false
		}
		defer file.Close()

		rows, err := h.parse(header.Filename, file)
		if err != nil {
			h.logger.Warn("parse upload", slog.String("file", header.Filename), slog.Any("error", err))
			httpx.RespondError(w, err)
			return "", nil, false
		}
		return header.Filename, rows, true
	}

	var body struct {
		FileName string `json:"file_name"`
		Rows     []Row  `json:"rows"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return "", nil, false
	}
	if len(body.Rows) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "rows must not be empty")
		return "", nil, false
	}
	if body.FileName == "" {
		body.FileName = "inline"
	}
	return body.FileName, body.Rows, true
}
