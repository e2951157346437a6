package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mbrandolfi/specchio/internal/mirror"
)

// MirrorHandler exposes the state machines to the rendering layer: state
// snapshots, direct widget selection (footer buttons, voice commands),
// explicit fitting-room reset (the back action), sharing, and serving
// rendered look images.
type MirrorHandler struct {
	nav     *mirror.Navigator
	fitting *mirror.FittingRoom
}

// NewMirrorHandler creates a MirrorHandler over the two machines.
func NewMirrorHandler(nav *mirror.Navigator, fitting *mirror.FittingRoom) *MirrorHandler {
	return &MirrorHandler{nav: nav, fitting: fitting}
}

// stateResponse is the combined machine snapshot.
type stateResponse struct {
	WidgetIndex    int             `json:"widgetIndex"`
	Widgets        []mirror.Widget `json:"widgets"`
	PreviewVisible bool            `json:"previewVisible"`
	MusicPlaying   bool            `json:"musicPlaying"`
	Fitting        mirror.State    `json:"fitting"`
}

type selectWidgetRequest struct {
	Index int `json:"index"`
}

// ServeHTTP routes /api/mirror/* requests.
func (h *MirrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/mirror/")

	switch {
	case path == "state" && r.Method == http.MethodGet:
		h.state(w, r)
	case path == "widget" && r.Method == http.MethodPost:
		h.selectWidget(w, r)
	case path == "reset" && r.Method == http.MethodPost:
		h.reset(w, r)
	case path == "share" && r.Method == http.MethodPost:
		h.share(w, r)
	case strings.HasPrefix(path, "looks/") && r.Method == http.MethodGet:
		h.lookImage(w, r, strings.TrimPrefix(path, "looks/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *MirrorHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		WidgetIndex:    h.nav.ActiveIndex(),
		Widgets:        h.nav.Widgets(),
		PreviewVisible: h.nav.PreviewVisible(),
		MusicPlaying:   h.nav.MusicPlaying(),
		Fitting:        h.fitting.State(),
	})
}

func (h *MirrorHandler) selectWidget(w http.ResponseWriter, r *http.Request) {
	var req selectWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.nav.Select(req.Index); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"index": h.nav.ActiveIndex()})
}

func (h *MirrorHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.fitting.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"phase": string(h.fitting.Phase())})
}

func (h *MirrorHandler) share(w http.ResponseWriter, r *http.Request) {
	if err := h.fitting.Share(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *MirrorHandler) lookImage(w http.ResponseWriter, r *http.Request, rawIndex string) {
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		http.Error(w, "Invalid look index", http.StatusBadRequest)
		return
	}

	image, err := h.fitting.LookImage(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(image)
}
