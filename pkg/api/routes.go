package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventorysync.com/pkg/inventory"
	"inventorysync.com/pkg/shopify"
)

// Service is what the routes need from the workflows. *inventory.Syncer
// satisfies it.
type Service interface {
	VendorLevels(ctx context.Context, vendor string) ([]shopify.InventoryLevel, error)
	Product(ctx context.Context, title string) (shopify.Product, error)
	UpdateMetafield(ctx context.Context, title, key, value string) (string, error)
	AdjustVendor(ctx context.Context, vendor string) inventory.Result
}

var _ Service = (*inventory.Syncer)(nil)

type updateMetafieldRequest struct {
	Title        string `json:"title"`
	MetafieldKey string `json:"metafieldKey"`
	NewValue     string `json:"newValue"`
}

type updateInventoryRequest struct {
	Vendor string `json:"vendor"`
}

// Register attaches the inventory routes to mux.
func Register(mux *http.ServeMux, logger *zap.Logger, svc Service) {
	mux.HandleFunc("GET /inventory-items/{vendor}", func(w http.ResponseWriter, r *http.Request) {
		vendor := r.PathValue("vendor")
		levels, err := svc.VendorLevels(r.Context(), vendor)
		if err != nil {
			logger.Error("fetch inventory items failed", zap.String("vendor", vendor), zap.Error(err))
			respondText(w, http.StatusInternalServerError, "Error fetching inventory items")
			return
		}
		respondJSON(w, http.StatusOK, levels)
	})

	mux.HandleFunc("GET /product/{title}", func(w http.ResponseWriter, r *http.Request) {
		title := r.PathValue("title")
		product, err := svc.Product(r.Context(), title)
		if err != nil {
			logger.Error("fetch product failed", zap.String("title", title), zap.Error(err))
			respondText(w, http.StatusInternalServerError, "Error fetching product")
			return
		}
		respondJSON(w, http.StatusOK, product)
	})

	mux.HandleFunc("POST /update-metafield", func(w http.ResponseWriter, r *http.Request) {
		var input updateMetafieldRequest
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondText(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.MetafieldKey) == "" {
			respondText(w, http.StatusBadRequest, "title and metafieldKey required")
			return
		}

		msg, err := svc.UpdateMetafield(r.Context(), input.Title, input.MetafieldKey, input.NewValue)
		if err != nil {
			if errors.Is(err, inventory.ErrMetafieldNotFound) {
				respondText(w, http.StatusNotFound, "Metafield not found")
				return
			}
			logger.Error("update metafield failed",
				zap.String("title", input.Title),
				zap.String("key", input.MetafieldKey),
				zap.Error(err),
			)
			respondText(w, http.StatusInternalServerError, "Error updating metafield")
			return
		}
		respondJSON(w, http.StatusOK, msg)
	})

	mux.HandleFunc("POST /update-inventory", func(w http.ResponseWriter, r *http.Request) {
		var input updateInventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if strings.TrimSpace(input.Vendor) == "" {
			respondError(w, http.StatusBadRequest, "vendor required")
			return
		}

		res := svc.AdjustVendor(r.Context(), input.Vendor)
		if res.Err != nil {
			logger.Error("update inventory failed",
				zap.String("vendor", input.Vendor),
				zap.Int("items", len(res.Items)),
				zap.Int("failed", len(res.Failures)),
				zap.Error(res.Err),
			)
			respondError(w, http.StatusInternalServerError, res.Summary())
			return
		}
		respondJSON(w, http.StatusOK, res.Levels)
	})
} // ./Register

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
} // ./respondJSON

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
} // ./respondError

func respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
} // ./respondText
