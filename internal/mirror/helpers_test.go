package mirror

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mbrandolfi/specchio/internal/catalog"
	"github.com/mbrandolfi/specchio/internal/detector"
)

// eventRecorder collects published events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// openHandAt returns an open palm whose middle-finger MCP sits at x.
func openHandAt(x float64) detector.HandLandmarks {
	h := detector.FingerCountLandmarks(4)
	return detector.Shifted(h, x-h.Points[detector.MiddleMCP].X, 0)
}

// fistAt returns a fist whose middle-finger MCP sits at x.
func fistAt(x float64) detector.HandLandmarks {
	h := detector.FistLandmarks()
	return detector.Shifted(h, x-h.Points[detector.MiddleMCP].X, 0)
}

type fakeSnap struct {
	mu    sync.Mutex
	photo []byte
	err   error
	calls int
}

func (s *fakeSnap) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.photo, s.err
}

func (s *fakeSnap) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordedLook struct {
	ItemID  string
	SceneID string
	Epoch   uint64
	HasImg  bool
	Err     string
}

type fakeRecorder struct {
	mu    sync.Mutex
	looks []recordedLook
}

func (r *fakeRecorder) RecordLook(itemID, sceneID string, epoch uint64, image []byte, genErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.looks = append(r.looks, recordedLook{
		ItemID:  itemID,
		SceneID: sceneID,
		Epoch:   epoch,
		HasImg:  len(image) > 0,
		Err:     genErr,
	})
	return nil
}

func (r *fakeRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.looks)
}

func testItems() []catalog.Item {
	return []catalog.Item{
		{
			ID: "jacket", Name: "Jacket", GarmentURL: "https://example.com/jacket.jpg",
			Scenes: []catalog.Scene{
				{ID: "s1", Label: "Studio", Prompt: "p1"},
				{ID: "s2", Label: "Street", Prompt: "p2"},
				{ID: "s3", Label: "Coast", Prompt: "p3"},
			},
		},
		{
			ID: "coat", Name: "Coat", GarmentURL: "https://example.com/coat.jpg",
			Scenes: []catalog.Scene{
				{ID: "c1", Label: "Studio", Prompt: "q1"},
			},
		},
		{
			ID: "dress", Name: "Dress", GarmentURL: "https://example.com/dress.jpg",
			Scenes: []catalog.Scene{
				{ID: "d1", Label: "Studio", Prompt: "r1"},
			},
		},
	}
}

// testFittingConfig keeps the swipe window realistic but makes cooldowns
// effectively permanent and the countdown fast, so tests stay deterministic.
func testFittingConfig() FittingConfig {
	return FittingConfig{
		SwipeThreshold:    0.15,
		SwipeWindow:       500 * time.Millisecond,
		SwipeCooldown:     time.Hour,
		CaptureCooldown:   time.Hour,
		ResetLockout:      0,
		CountdownInterval: 2 * time.Millisecond,
		CountdownStart:    3,
		ThumbHoldFrames:   3,
		StabilityFrames:   8,
		GenerateTimeout:   5 * time.Second,
	}
}

// stubFetch bypasses the HTTP garment download.
func stubFetch(m *FittingRoom) {
	m.fetch = func(ctx context.Context, url string) ([]byte, error) {
		return []byte("garment-bytes"), nil
	}
}

// waitForPhase polls until the machine reaches the wanted phase.
func waitForPhase(t *testing.T, m *FittingRoom, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.Phase() != want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for phase %s (current %s)", want, m.Phase())
		}
		time.Sleep(time.Millisecond)
	}
}

// waitFor polls an arbitrary condition.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
