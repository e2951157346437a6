package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/mbrandolfi/specchio/internal/store"
)

// LooksHandler serves the generated-look history.
type LooksHandler struct {
	looks *store.LookRepository
}

// NewLooksHandler creates a LooksHandler over the given repository.
func NewLooksHandler(looks *store.LookRepository) *LooksHandler {
	return &LooksHandler{looks: looks}
}

// ServeHTTP routes /api/looks and /api/looks/{id}/image.
func (h *LooksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/looks")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/image"); ok {
		h.image(w, r, id)
		return
	}

	http.NotFound(w, r)
}

func (h *LooksHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.looks.ListRecent(limit)
	if err != nil {
		log.Printf("list looks: %v", err)
		http.Error(w, "Failed to load looks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"looks": records})
}

func (h *LooksHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	image, err := h.looks.GetImage(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("load look image: %v", err)
		http.Error(w, "Failed to load image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(image)
}
