// Package api provides the HTTP API handlers for the mirror server.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mbrandolfi/specchio/internal/catalog"
)

// CatalogSource lists the garment catalog.
type CatalogSource interface {
	List() ([]catalog.Item, error)
}

// CatalogHandler serves the garment catalog.
type CatalogHandler struct {
	source CatalogSource
}

// NewCatalogHandler creates a CatalogHandler over the given source.
func NewCatalogHandler(source CatalogSource) *CatalogHandler {
	return &CatalogHandler{source: source}
}

// ServeHTTP handles GET /api/catalog.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items, err := h.source.List()
	if err != nil {
		log.Printf("list catalog: %v", err)
		http.Error(w, "Failed to load catalog", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
