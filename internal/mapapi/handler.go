// Package mapapi serves the boundary dataset and the joined province records
// to a map front end.
package mapapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/province-map/internal/boundary"
	"github.com/sells-group/province-map/internal/model"
	"github.com/sells-group/province-map/internal/province"
)

// History lists past provisioning attempts. store.Store satisfies it.
type History interface {
	ListProvisions(ctx context.Context, limit int) ([]model.Provision, error)
}

// Handler holds the data the API serves. The dataset is loaded once at
// startup and is read-only afterwards.
type Handler struct {
	boundaryPath string
	dataset      *boundary.Dataset
	featureKey   string
	records      []province.Record
	history      History
}

// NewHandler creates a Handler. history may be nil.
func NewHandler(boundaryPath string, ds *boundary.Dataset, records []province.Record, history History) *Handler {
	return &Handler{
		boundaryPath: boundaryPath,
		dataset:      ds,
		featureKey:   boundary.ResolveFeatureKey(ds),
		records:      records,
		history:      history,
	}
}

// Router builds the chi router. allowedOrigins configures CORS.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/boundaries", h.boundaries)
		r.Get("/provinces", h.listProvinces)
		r.Get("/provinces/{name}", h.getProvince)
		r.Get("/provisions", h.listProvisions)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) boundaries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, h.boundaryPath)
}

type provinceList struct {
	FeatureKey string            `json:"feature_key"`
	Count      int               `json:"count"`
	Unmatched  []string          `json:"unmatched,omitempty"`
	Provinces  []province.Record `json:"provinces"`
}

func (h *Handler) listProvinces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, provinceList{
		FeatureKey: h.featureKey,
		Count:      len(h.records),
		Unmatched:  province.Unmatched(h.records),
		Provinces:  h.records,
	})
}

type provinceDetail struct {
	province.Record
	Bounds *boundary.Bounds `json:"bounds,omitempty"`
}

func (h *Handler) getProvince(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, ok := province.Select(h.records, name)
	if name == "" || !ok {
		writeError(w, http.StatusNotFound, "unknown province")
		return
	}

	detail := provinceDetail{Record: rec}
	if h.dataset != nil {
		if f, found := h.dataset.Find(boundary.PropertyName(h.featureKey), rec.FeatureName); found {
			if b, ok := f.Bounds(); ok {
				detail.Bounds = &b
			}
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) listProvisions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := h.history.ListProvisions(r.Context(), limit)
	if err != nil {
		zap.L().Error("mapapi: list provisions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if rows == nil {
		rows = []model.Provision{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("mapapi: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
