package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mbrandolfi/specchio/internal/detector"
	"github.com/mbrandolfi/specchio/internal/generate"
)

func newTestFitting(cfg FittingConfig) (*FittingRoom, *generate.MockGenerator, *fakeSnap, *fakeRecorder, *eventRecorder) {
	gen := generate.NewMockGenerator()
	snap := &fakeSnap{photo: []byte("photo-bytes")}
	rec := &fakeRecorder{}
	events := &eventRecorder{}

	m := NewFittingRoom(testItems(), cfg, snap, gen, rec, events.sink)
	stubFetch(m)
	return m, gen, snap, rec, events
}

// armAndCapture shows an open hand then a fist, starting the capture flow.
func armAndCapture(t *testing.T, m *FittingRoom) {
	t.Helper()
	now := time.Now()
	m.HandleFrame(ptr(openHandAt(0.50)), now)
	evs := m.HandleFrame(ptr(fistAt(0.50)), now.Add(50*time.Millisecond))

	if m.Phase() != PhaseCapturing {
		t.Fatalf("expected capturing phase, got %s (events %+v)", m.Phase(), evs)
	}
}

func TestFittingRoom_SwipeBrowsesCatalog(t *testing.T) {
	m, _, _, _, events := newTestFitting(testFittingConfig())
	now := time.Now()

	m.HandleFrame(ptr(openHandAt(0.60)), now)
	evs := m.HandleFrame(ptr(openHandAt(0.40)), now.Add(100*time.Millisecond))

	if len(evs) != 1 || evs[0].Type != EventCatalogBrowsed {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if evs[0].Index != 1 || evs[0].ItemID != "coat" {
		t.Fatalf("expected item 1 (coat), got %+v", evs[0])
	}
	if got := m.State().BrowseIndex; got != 1 {
		t.Fatalf("state browse index %d", got)
	}
	if got := events.ofType(EventCatalogBrowsed); len(got) != 1 {
		t.Fatalf("sink saw %+v", got)
	}
}

func TestFittingRoom_SwipeRightWrapsToLastItem(t *testing.T) {
	m, _, _, _, _ := newTestFitting(testFittingConfig())
	now := time.Now()

	m.HandleFrame(ptr(openHandAt(0.40)), now)
	m.HandleFrame(ptr(openHandAt(0.60)), now.Add(100*time.Millisecond))

	if got := m.State().BrowseIndex; got != 2 {
		t.Fatalf("expected wrap to item 2, got %d", got)
	}
}

func TestFittingRoom_FistIgnoredBeforeOpenHand(t *testing.T) {
	m, _, _, _, _ := newTestFitting(testFittingConfig())
	now := time.Now()

	// A fist with no prior open hand must not start a capture
	for i := 0; i < 5; i++ {
		m.HandleFrame(ptr(fistAt(0.50)), now.Add(time.Duration(i)*50*time.Millisecond))
	}
	if m.Phase() != PhaseCatalog {
		t.Fatalf("fist started a capture without the open-hand gate: %s", m.Phase())
	}

	// Once the hand has opened, the fist goes through
	m.HandleFrame(ptr(openHandAt(0.50)), now.Add(300*time.Millisecond))
	m.HandleFrame(ptr(fistAt(0.50)), now.Add(350*time.Millisecond))
	if m.Phase() != PhaseCapturing {
		t.Fatalf("expected capturing after open hand then fist, got %s", m.Phase())
	}
}

func TestFittingRoom_ResetLockoutBlocksImmediateCapture(t *testing.T) {
	cfg := testFittingConfig()
	cfg.ResetLockout = time.Hour
	m, _, _, _, _ := newTestFitting(cfg)

	m.Reset()

	now := time.Now()
	m.HandleFrame(ptr(openHandAt(0.50)), now)
	m.HandleFrame(ptr(fistAt(0.50)), now.Add(50*time.Millisecond))

	if m.Phase() != PhaseCatalog {
		t.Fatalf("capture started inside the reset lockout: %s", m.Phase())
	}
}

func TestFittingRoom_CaptureCountdownRunsToGeneration(t *testing.T) {
	m, _, snap, _, events := newTestFitting(testFittingConfig())

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseResults)

	if snap.Calls() != 1 {
		t.Fatalf("expected one snapshot, got %d", snap.Calls())
	}

	ticks := events.ofType(EventCountdownTick)
	if len(ticks) != 4 {
		t.Fatalf("expected countdown ticks 3..0, got %+v", ticks)
	}
	for i, want := range []int{3, 2, 1, 0} {
		if ticks[i].Countdown != want {
			t.Fatalf("tick %d: expected countdown %d, got %d", i, want, ticks[i].Countdown)
		}
	}
}

func TestFittingRoom_GenerationSettlesAllScenes(t *testing.T) {
	m, gen, _, rec, events := newTestFitting(testFittingConfig())
	gen.Succeed("p1", []byte("img1"))
	gen.Succeed("p2", []byte("img2"))
	gen.Succeed("p3", []byte("img3"))

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseResults)

	st := m.State()
	if len(st.Looks) != 3 {
		t.Fatalf("expected 3 looks, got %d", len(st.Looks))
	}
	for i, lk := range st.Looks {
		if lk.Loading || !lk.HasImg || lk.Error != "" {
			t.Fatalf("look %d not settled cleanly: %+v", i, lk)
		}
	}
	if st.Selected != 0 {
		t.Fatalf("expected selection 0 on entry to results, got %d", st.Selected)
	}

	img, err := m.LookImage(0)
	if err != nil || string(img) != "img1" {
		t.Fatalf("LookImage(0) = %q, %v", img, err)
	}

	waitFor(t, "recorded looks", func() bool { return rec.Count() == 3 })
	if got := events.ofType(EventLookUpdated); len(got) != 3 {
		t.Fatalf("expected 3 look_updated events, got %d", len(got))
	}
}

func TestFittingRoom_PartialFailureStillReachesResults(t *testing.T) {
	m, gen, _, _, _ := newTestFitting(testFittingConfig())
	gen.Fail("p2", errors.New("render failed"))

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseResults)

	st := m.State()
	if st.Looks[1].Error == "" {
		t.Fatal("expected an error on the failed look")
	}
	if st.Looks[0].Error != "" || st.Looks[2].Error != "" {
		t.Fatalf("sibling looks affected by the failure: %+v", st.Looks)
	}

	if _, err := m.LookImage(1); err == nil {
		t.Fatal("expected LookImage to fail for the errored slot")
	}
	if _, err := m.LookImage(0); err != nil {
		t.Fatalf("LookImage(0): %v", err)
	}
}

func TestFittingRoom_GarmentFetchFailureSettlesEverySlot(t *testing.T) {
	m, _, _, _, _ := newTestFitting(testFittingConfig())
	m.fetch = func(ctx context.Context, url string) ([]byte, error) {
		return nil, errors.New("cdn unreachable")
	}

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseResults)

	for i, lk := range m.State().Looks {
		if lk.Loading || lk.Error == "" {
			t.Fatalf("look %d should have settled with an error: %+v", i, lk)
		}
	}
}

func TestFittingRoom_OutOfOrderCompletion(t *testing.T) {
	m, gen, _, _, _ := newTestFitting(testFittingConfig())
	gen.Hold("p1")

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseGenerating)

	// Scenes 2 and 3 settle first; the batch stays open
	waitFor(t, "two settled looks", func() bool {
		st := m.State()
		settled := 0
		for _, lk := range st.Looks {
			if !lk.Loading {
				settled++
			}
		}
		return settled == 2
	})
	if m.Phase() != PhaseGenerating {
		t.Fatalf("batch completed before the held call: %s", m.Phase())
	}

	gen.Release("p1")
	waitForPhase(t, m, PhaseResults)
}

func TestFittingRoom_ResetDiscardsInFlightResults(t *testing.T) {
	m, gen, _, _, _ := newTestFitting(testFittingConfig())
	gen.Hold("p1")
	gen.Hold("p2")
	gen.Hold("p3")

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseGenerating)
	waitFor(t, "generator calls", func() bool { return len(gen.Calls()) == 3 })

	m.Reset()
	if m.Phase() != PhaseCatalog {
		t.Fatalf("expected catalog after reset, got %s", m.Phase())
	}

	gen.Release("p1")
	gen.Release("p2")
	gen.Release("p3")
	time.Sleep(50 * time.Millisecond)

	if m.Phase() != PhaseCatalog {
		t.Fatalf("stale results moved the machine out of catalog: %s", m.Phase())
	}
	if looks := m.State().Looks; len(looks) != 0 {
		t.Fatalf("stale results repopulated looks: %+v", looks)
	}
}

func TestFittingRoom_SnapshotFailureReturnsToCatalog(t *testing.T) {
	m, _, snap, _, _ := newTestFitting(testFittingConfig())
	snap.err = errors.New("no frame available")

	armAndCapture(t, m)
	waitForPhase(t, m, PhaseCatalog)

	if looks := m.State().Looks; len(looks) != 0 {
		t.Fatalf("looks populated after a failed snapshot: %+v", looks)
	}
}

func runToResults(t *testing.T, m *FittingRoom) {
	t.Helper()
	armAndCapture(t, m)
	waitForPhase(t, m, PhaseResults)
}

func TestFittingRoom_FingerCountSelectsLook(t *testing.T) {
	m, _, _, _, events := newTestFitting(testFittingConfig())
	runToResults(t, m)

	now := time.Now()
	two := detector.FingerCountLandmarks(2)
	for i := 0; i < 8; i++ {
		m.HandleFrame(&two, now.Add(time.Duration(i)*30*time.Millisecond))
	}

	if got := m.SelectedLook(); got != 1 {
		t.Fatalf("expected look 1 selected, got %d", got)
	}
	sel := events.ofType(EventLookSelected)
	if len(sel) != 1 || sel[0].Index != 1 || sel[0].SceneID != "s2" {
		t.Fatalf("selection events: %+v", sel)
	}
}

func TestFittingRoom_UnstableFingerCountDoesNotSelect(t *testing.T) {
	m, _, _, _, _ := newTestFitting(testFittingConfig())
	runToResults(t, m)

	now := time.Now()
	two := detector.FingerCountLandmarks(2)
	three := detector.FingerCountLandmarks(3)

	// Seven twos, one three: the divergent frame spoils the run
	for i := 0; i < 7; i++ {
		m.HandleFrame(&two, now.Add(time.Duration(i)*30*time.Millisecond))
	}
	m.HandleFrame(&three, now.Add(210*time.Millisecond))

	// Seven more twos are not enough while the three is still buffered
	for i := 0; i < 7; i++ {
		m.HandleFrame(&two, now.Add(time.Duration(8+i)*30*time.Millisecond))
	}
	if got := m.SelectedLook(); got != 0 {
		t.Fatalf("selection changed on an unstable reading: %d", got)
	}

	// The eighth consecutive two completes the run
	m.HandleFrame(&two, now.Add(450*time.Millisecond))
	if got := m.SelectedLook(); got != 1 {
		t.Fatalf("expected look 1 after a full stable run, got %d", got)
	}
}

func TestFittingRoom_SelectingCurrentLookEmitsNothing(t *testing.T) {
	m, _, _, _, events := newTestFitting(testFittingConfig())
	runToResults(t, m)

	now := time.Now()
	one := detector.FingerCountLandmarks(1)
	for i := 0; i < 10; i++ {
		m.HandleFrame(&one, now.Add(time.Duration(i)*30*time.Millisecond))
	}

	if got := m.SelectedLook(); got != 0 {
		t.Fatalf("selection moved: %d", got)
	}
	if sel := events.ofType(EventLookSelected); len(sel) != 0 {
		t.Fatalf("re-selecting the current look emitted events: %+v", sel)
	}
}

func TestFittingRoom_ThumbsUpHoldResets(t *testing.T) {
	m, _, _, _, events := newTestFitting(testFittingConfig())
	runToResults(t, m)

	now := time.Now()
	thumbs := detector.ThumbsUpLandmarks()

	// Two holding frames are below the three-frame threshold
	m.HandleFrame(&thumbs, now)
	m.HandleFrame(&thumbs, now.Add(30*time.Millisecond))
	if m.Phase() != PhaseResults {
		t.Fatalf("reset fired early: %s", m.Phase())
	}

	m.HandleFrame(&thumbs, now.Add(60*time.Millisecond))
	if m.Phase() != PhaseCatalog {
		t.Fatalf("expected catalog after a held thumbs up, got %s", m.Phase())
	}

	progress := events.ofType(EventThumbProgress)
	if len(progress) < 2 {
		t.Fatalf("expected progress events while holding, got %+v", progress)
	}
}

func TestFittingRoom_ThumbsUpReleaseDecaysProgress(t *testing.T) {
	m, _, _, _, _ := newTestFitting(testFittingConfig())
	runToResults(t, m)

	now := time.Now()
	thumbs := detector.ThumbsUpLandmarks()
	palm := detector.FingerCountLandmarks(4)

	m.HandleFrame(&thumbs, now)
	m.HandleFrame(&thumbs, now.Add(30*time.Millisecond))
	// Releasing decays the hold instead of firing
	m.HandleFrame(&palm, now.Add(60*time.Millisecond))
	m.HandleFrame(&thumbs, now.Add(90*time.Millisecond))
	if m.Phase() != PhaseResults {
		t.Fatalf("reset fired with decayed progress: %s", m.Phase())
	}

	m.HandleFrame(&thumbs, now.Add(120*time.Millisecond))
	if m.Phase() != PhaseCatalog {
		t.Fatalf("expected reset once the hold rebuilt, got %s", m.Phase())
	}
}

func TestFittingRoom_ShareOnlyInResults(t *testing.T) {
	m, _, _, _, events := newTestFitting(testFittingConfig())

	if err := m.Share(); err == nil {
		t.Fatal("expected share to fail in the catalog phase")
	}

	runToResults(t, m)
	if err := m.Share(); err != nil {
		t.Fatalf("share in results: %v", err)
	}

	got := events.ofType(EventShareRequested)
	if len(got) != 1 || got[0].Index != 0 || got[0].ItemID != "jacket" {
		t.Fatalf("share events: %+v", got)
	}
}

func TestFittingRoom_ResetClearsState(t *testing.T) {
	m, _, _, _, _ := newTestFitting(testFittingConfig())
	runToResults(t, m)

	m.Reset()

	st := m.State()
	if st.Phase != PhaseCatalog || len(st.Looks) != 0 || st.Countdown != 0 || st.Selected != 0 {
		t.Fatalf("state not cleared: %+v", st)
	}
	// Browsing position survives the reset
	if st.BrowseIndex != 0 || st.ItemID != "jacket" {
		t.Fatalf("unexpected browse position: %+v", st)
	}
}

func TestFittingRoom_CapturingIgnoresGestures(t *testing.T) {
	cfg := testFittingConfig()
	cfg.CountdownInterval = 100 * time.Millisecond
	m, _, _, _, _ := newTestFitting(cfg)

	armAndCapture(t, m)

	// Swipes and fists during the countdown change nothing
	now := time.Now()
	m.HandleFrame(ptr(openHandAt(0.60)), now)
	evs := m.HandleFrame(ptr(openHandAt(0.40)), now.Add(30*time.Millisecond))
	if len(evs) != 0 {
		t.Fatalf("gesture interpreted during capture: %+v", evs)
	}
	if got := m.State().BrowseIndex; got != 0 {
		t.Fatalf("browse index moved during capture: %d", got)
	}
}
