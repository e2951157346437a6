package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mbrandolfi/specchio/internal/app"
	"github.com/mbrandolfi/specchio/internal/audio"
	"github.com/mbrandolfi/specchio/internal/capture"
	"github.com/mbrandolfi/specchio/internal/catalog"
	"github.com/mbrandolfi/specchio/internal/generate"
	"github.com/mbrandolfi/specchio/internal/mirror"
	"github.com/mbrandolfi/specchio/internal/server"
	"github.com/mbrandolfi/specchio/internal/store"
	"github.com/mbrandolfi/specchio/internal/tray"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		cameraID   = flag.Int("camera", 0, "camera device ID")
		dbPath     = flag.String("db", "", "database path (default ~/.specchio/specchio.db)")
		staticDir  = flag.String("web", "", "static files directory (default: auto-detect)")
		renderURL  = flag.String("render-endpoint", os.Getenv("SPECCHIO_RENDER_ENDPOINT"), "try-on rendering service endpoint")
		renderKey  = flag.String("render-key", os.Getenv("SPECCHIO_RENDER_KEY"), "try-on rendering service API key")
		musicCmd   = flag.String("music-cmd", "", "command to run for ambient music playback")
		useTray    = flag.Bool("tray", true, "show the system tray menu")
		skipCamera = flag.Bool("no-camera", false, "serve the API without a camera pipeline")
	)
	flag.Parse()

	fmt.Println("Specchio - Smart Mirror")

	// Initialize the store
	path := *dbPath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dataDir := filepath.Join(homeDir, ".specchio")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		path = filepath.Join(dataDir, "specchio.db")
	}

	st, err := store.New(path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	items, err := loadCatalog(st)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	fmt.Printf("Catalog loaded: %d items\n", len(items))

	// Event fan-out: WebSocket clients plus the tray status line
	hub := server.NewHub()
	t := tray.New()
	sink := mirror.FanOut(hub.Publish, func(ev mirror.Event) {
		t.SetLastEvent(string(ev.Type))
	})

	// Ambient music player for the fist gesture
	var player audio.Player
	if *musicCmd != "" {
		parts := strings.Fields(*musicCmd)
		player = audio.NewExecPlayer(parts[0], parts[1:]...)
	} else {
		player = audio.NewMockPlayer()
		log.Println("No music command configured, music toggle is a no-op")
	}

	// Try-on generator
	var gen generate.Generator
	if *renderURL != "" {
		gen = generate.NewHTTPGenerator(*renderURL, *renderKey, &http.Client{Timeout: 60 * time.Second})
	} else {
		gen = generate.NewMockGenerator()
		log.Println("No render endpoint configured, using placeholder generator")
	}

	// Camera is shared between the pipeline, the snapshotter, and the
	// preview stream.
	cam := capture.NewCamera(*cameraID)
	snap := capture.NewSnapshotter(cam)

	nav := mirror.NewNavigator(mirror.DefaultWidgets(), mirror.DefaultNavConfig(), player, sink)
	fitting := mirror.NewFittingRoom(items, mirror.DefaultFittingConfig(), snap, gen, st.Looks(), sink)
	dispatcher := mirror.NewDispatcher(nav, fitting)

	application := app.New(app.Config{
		Dispatcher: dispatcher,
		CameraID:   *cameraID,
	})
	application.SetCamera(cam)

	if !*skipCamera {
		if err := application.Start(); err != nil {
			log.Printf("Camera pipeline not started: %v", err)
		}
	}

	// Find web directory
	webDir := *staticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Camera:    cam,
		Nav:       nav,
		Fitting:   fitting,
		Hub:       hub,
	})

	if !*useTray {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
		log.Printf("Gesture interpretation enabled: %v", enabled)
	})
	t.OnOpenUI(func() {
		openBrowser("http://localhost" + *addr)
	})
	t.OnQuit(func() {
		application.Stop()
	})

	// Blocks until quit is selected from the tray menu
	t.Run()
}

// loadCatalog seeds the built-in catalog on first run and returns the
// stored items.
func loadCatalog(st *store.Store) ([]catalog.Item, error) {
	repo := st.Catalog()

	count, err := repo.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := repo.Seed(catalog.Default()); err != nil {
			return nil, err
		}
		log.Println("Seeded default catalog")
	}

	return repo.List()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.specchio/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".specchio", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
