package mirror

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/mbrandolfi/specchio/internal/catalog"
	"github.com/mbrandolfi/specchio/internal/detector"
	"github.com/mbrandolfi/specchio/internal/generate"
	"github.com/mbrandolfi/specchio/internal/gesture"
)

// Phase is the fitting-room sub-flow phase. The only edges are the forward
// flow catalog → capturing → generating → results and the reset edge back
// to catalog.
type Phase string

const (
	PhaseCatalog    Phase = "catalog"
	PhaseCapturing  Phase = "capturing"
	PhaseGenerating Phase = "generating"
	PhaseResults    Phase = "results"
)

// Look is one generated result slot: a scene plus, once its generation call
// settles, either the rendered image or an error.
type Look struct {
	Scene   catalog.Scene
	Image   []byte
	Loading bool
	Err     string
}

// Snapshotter produces the mirrored reference photo at the end of the
// capture countdown.
type Snapshotter interface {
	Snapshot() ([]byte, error)
}

// LookRecorder persists settled looks; nil disables history.
type LookRecorder interface {
	RecordLook(itemID, sceneID string, epoch uint64, image []byte, genErr string) error
}

// FittingConfig holds the fitting room's gesture timings and thresholds.
type FittingConfig struct {
	SwipeThreshold    float64
	SwipeWindow       time.Duration
	SwipeCooldown     time.Duration
	CaptureCooldown   time.Duration
	ResetLockout      time.Duration
	CountdownInterval time.Duration
	CountdownStart    int
	ThumbHoldFrames   int
	StabilityFrames   int
	GenerateTimeout   time.Duration
}

// DefaultFittingConfig returns the production timings.
func DefaultFittingConfig() FittingConfig {
	return FittingConfig{
		SwipeThreshold:    0.15,
		SwipeWindow:       500 * time.Millisecond,
		SwipeCooldown:     800 * time.Millisecond,
		CaptureCooldown:   1200 * time.Millisecond,
		ResetLockout:      500 * time.Millisecond,
		CountdownInterval: time.Second,
		CountdownStart:    3,
		ThumbHoldFrames:   10,
		StabilityFrames:   8,
		GenerateTimeout:   45 * time.Second,
	}
}

// FittingRoom owns the virtual-fitting-room flow: browsing the catalog by
// swipe, fist-to-capture with countdown, the concurrent generation batch,
// and result selection by finger count with thumbs-up-hold to reset.
//
// Frames, timer callbacks and generation completions all funnel through the
// machine's mutex, so state behaves as if owned by a single actor. Each
// capture carries a monotonically increasing epoch; a generation completion
// whose epoch is no longer current is discarded.
type FittingRoom struct {
	mu        sync.Mutex
	cfg       FittingConfig
	items     []catalog.Item
	snap      Snapshotter
	generator generate.Generator
	fetch     func(ctx context.Context, url string) ([]byte, error)
	recorder  LookRecorder
	sink      Sink

	phase      Phase
	browseIdx  int
	countdown  int
	countTimer *time.Timer
	epoch      uint64
	activeItem string
	looks      []Look
	settled    int
	selected   int

	// Post-reset capture gate: a fist may start a capture only after the
	// hand has shown at least three extended fingers once and the flat
	// lockout has passed.
	handOpen  bool
	lockUntil time.Time

	lastFingers  int
	lastProgress float64

	swipe       *gesture.SwipeDetector
	swipeGate   *gesture.CooldownGate
	captureGate *gesture.CooldownGate
	thumbHold   *gesture.HoldAccumulator
	fingers     *gesture.StabilityBuffer
}

// NewFittingRoom creates the machine in the catalog phase at item 0, with
// the post-reset capture gate armed.
func NewFittingRoom(items []catalog.Item, cfg FittingConfig, snap Snapshotter, gen generate.Generator, recorder LookRecorder, sink Sink) *FittingRoom {
	if cfg.GenerateTimeout > 0 {
		gen = generate.WithTimeout(gen, cfg.GenerateTimeout)
	}

	return &FittingRoom{
		cfg:       cfg,
		items:     items,
		snap:      snap,
		generator: gen,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return generate.FetchImage(ctx, http.DefaultClient, url)
		},
		recorder:    recorder,
		sink:        sink,
		phase:       PhaseCatalog,
		lastFingers: -1,
		swipe:       gesture.NewSwipeDetector(cfg.SwipeThreshold, cfg.SwipeWindow),
		swipeGate:   gesture.NewCooldownGate(cfg.SwipeCooldown),
		captureGate: gesture.NewCooldownGate(cfg.CaptureCooldown),
		thumbHold:   gesture.NewHoldAccumulator(cfg.ThumbHoldFrames, true),
		fingers:     gesture.NewStabilityBuffer(cfg.StabilityFrames),
	}
}

// HandleFrame interprets one frame's landmarks (nil when no hand was
// detected) for the current phase and returns the events it emitted.
func (m *FittingRoom) HandleFrame(hand *detector.HandLandmarks, now time.Time) []Event {
	m.mu.Lock()
	var evs []Event
	switch m.phase {
	case PhaseCatalog:
		evs = m.handleCatalogLocked(hand, now)
	case PhaseResults:
		evs = m.handleResultsLocked(hand, now)
	default:
		// Capturing and generating consume no gestures, but a vanished
		// hand must not leave stale hold progress behind.
		if hand == nil {
			m.thumbHold.Reset()
			m.fingers.Reset()
		}
	}
	m.mu.Unlock()

	m.publish(evs)
	return evs
}

func (m *FittingRoom) handleCatalogLocked(hand *detector.HandLandmarks, now time.Time) []Event {
	if hand == nil {
		m.swipe.Reset()
		return nil
	}

	if gesture.IsFist(hand) {
		m.swipe.Reset()
		if !m.handOpen || now.Before(m.lockUntil) {
			return nil
		}
		if !m.captureGate.TryFire() {
			return nil
		}
		return m.startCaptureLocked()
	}

	if gesture.ExtendedFingerCount(hand) >= 3 {
		m.handOpen = true
	}

	dir := m.swipe.Sample(hand.Points[detector.MiddleMCP].X, now)
	if dir == gesture.SwipeNone || !m.swipeGate.TryFire() {
		return nil
	}

	count := len(m.items)
	switch dir {
	case gesture.SwipeLeft:
		m.browseIdx = (m.browseIdx + 1) % count
	case gesture.SwipeRight:
		m.browseIdx = (m.browseIdx - 1 + count) % count
	}
	return []Event{{
		Type:   EventCatalogBrowsed,
		Index:  m.browseIdx,
		ItemID: m.items[m.browseIdx].ID,
	}}
}

func (m *FittingRoom) handleResultsLocked(hand *detector.HandLandmarks, now time.Time) []Event {
	if hand == nil {
		m.thumbHold.Reset()
		m.fingers.Reset()
		return m.progressEventLocked()
	}

	if gesture.IsThumbsUp(hand) {
		fired := m.thumbHold.Update(true)
		evs := m.progressEventLocked()
		if fired {
			evs = append(evs, m.resetLocked(now)...)
		}
		return evs
	}

	m.thumbHold.Update(false)
	evs := m.progressEventLocked()

	count := gesture.ExtendedFingerCount(hand)
	if count != m.lastFingers {
		m.lastFingers = count
		evs = append(evs, Event{Type: EventFingerCount, Count: count})
	}

	if count >= 1 && count <= 4 {
		if stable, ok := m.fingers.Push(count); ok {
			idx := stable - 1
			if idx != m.selected && idx < len(m.looks) {
				m.selected = idx
				evs = append(evs, Event{
					Type:    EventLookSelected,
					Index:   idx,
					SceneID: m.looks[idx].Scene.ID,
				})
			}
		}
	}
	return evs
}

// progressEventLocked emits the thumbs-up progress fraction when it changed.
func (m *FittingRoom) progressEventLocked() []Event {
	p := m.thumbHold.Progress()
	if p == m.lastProgress {
		return nil
	}
	m.lastProgress = p
	return []Event{{Type: EventThumbProgress, Progress: p}}
}

func (m *FittingRoom) startCaptureLocked() []Event {
	m.phase = PhaseCapturing
	m.countdown = m.cfg.CountdownStart
	m.scheduleTickLocked()
	return []Event{
		{Type: EventPhaseChanged, Phase: string(PhaseCapturing), ItemID: m.items[m.browseIdx].ID},
		{Type: EventCountdownTick, Countdown: m.countdown},
	}
}

func (m *FittingRoom) scheduleTickLocked() {
	m.countTimer = time.AfterFunc(m.cfg.CountdownInterval, m.tick)
}

func (m *FittingRoom) tick() {
	m.mu.Lock()
	if m.phase != PhaseCapturing {
		m.mu.Unlock()
		return
	}

	m.countdown--
	evs := []Event{{Type: EventCountdownTick, Countdown: m.countdown}}

	if m.countdown > 0 {
		m.scheduleTickLocked()
		m.mu.Unlock()
		m.publish(evs)
		return
	}

	photo, err := m.snap.Snapshot()
	if err != nil {
		// No frame to capture: skip this attempt and return to the
		// catalog so the flow stays interactive.
		log.Printf("capture skipped: %v", err)
		evs = append(evs, m.resetLocked(time.Now())...)
		m.mu.Unlock()
		m.publish(evs)
		return
	}

	evs = append(evs, m.startGeneratingLocked(photo)...)
	m.mu.Unlock()
	m.publish(evs)
}

func (m *FittingRoom) startGeneratingLocked(photo []byte) []Event {
	item := m.items[m.browseIdx]

	m.epoch++
	m.phase = PhaseGenerating
	m.activeItem = item.ID
	m.looks = make([]Look, len(item.Scenes))
	for i, sc := range item.Scenes {
		m.looks[i] = Look{Scene: sc, Loading: true}
	}
	m.settled = 0
	m.selected = 0

	go m.runBatch(m.epoch, item, photo)

	return []Event{{
		Type:   EventPhaseChanged,
		Phase:  string(PhaseGenerating),
		ItemID: item.ID,
		Count:  len(item.Scenes),
	}}
}

// runBatch fetches the garment image once, then fires one generation call
// per scene. Completion order is unspecified; each settles its own slot.
// A failing call never aborts its siblings.
func (m *FittingRoom) runBatch(epoch uint64, item catalog.Item, photo []byte) {
	ctx := context.Background()
	if m.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.GenerateTimeout)
		defer cancel()
	}

	garment, err := m.fetch(ctx, item.GarmentURL)
	if err != nil {
		for i := range item.Scenes {
			m.settle(epoch, i, nil, fmt.Errorf("garment image: %w", err))
		}
		return
	}

	var wg sync.WaitGroup
	for i, sc := range item.Scenes {
		wg.Add(1)
		go func(i int, sc catalog.Scene) {
			defer wg.Done()
			image, err := m.generator.Generate(ctx, generate.Request{
				Photo:   photo,
				Garment: garment,
				Prompt:  sc.Prompt,
			})
			m.settle(epoch, i, image, err)
		}(i, sc)
	}
	wg.Wait()
}

// settle resolves one look slot. Results arriving for a superseded capture
// epoch are discarded; the batch is complete when the settled count reaches
// the slot count, regardless of completion order.
func (m *FittingRoom) settle(epoch uint64, idx int, image []byte, genErr error) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		log.Printf("discarding stale look result (epoch %d)", epoch)
		return
	}
	if idx < 0 || idx >= len(m.looks) || !m.looks[idx].Loading {
		m.mu.Unlock()
		return
	}

	lk := &m.looks[idx]
	lk.Loading = false
	var errStr string
	if genErr != nil {
		errStr = genErr.Error()
		lk.Err = errStr
		log.Printf("look %s failed: %v", lk.Scene.ID, genErr)
	} else {
		lk.Image = image
	}
	m.settled++

	evs := []Event{{
		Type:    EventLookUpdated,
		Index:   idx,
		SceneID: lk.Scene.ID,
		Error:   errStr,
	}}

	if m.settled == len(m.looks) && m.phase == PhaseGenerating {
		m.phase = PhaseResults
		m.selected = 0
		m.thumbHold.Reset()
		m.fingers.Reset()
		m.lastFingers = -1
		m.lastProgress = 0
		evs = append(evs, Event{Type: EventPhaseChanged, Phase: string(PhaseResults)})
	}

	itemID := m.activeItem
	sceneID := lk.Scene.ID
	recorder := m.recorder
	m.mu.Unlock()

	if recorder != nil {
		if err := recorder.RecordLook(itemID, sceneID, epoch, image, errStr); err != nil {
			log.Printf("record look: %v", err)
		}
	}
	m.publish(evs)
}

// Reset returns the machine to the catalog phase, clearing all fitting-room
// state and re-arming the post-reset capture gate. In-flight generation
// calls are orphaned: their epoch no longer matches and their results are
// discarded on arrival.
func (m *FittingRoom) Reset() {
	m.mu.Lock()
	evs := m.resetLocked(time.Now())
	m.mu.Unlock()
	m.publish(evs)
}

func (m *FittingRoom) resetLocked(now time.Time) []Event {
	m.epoch++
	if m.countTimer != nil {
		m.countTimer.Stop()
		m.countTimer = nil
	}

	m.phase = PhaseCatalog
	m.countdown = 0
	m.activeItem = ""
	m.looks = nil
	m.settled = 0
	m.selected = 0
	m.handOpen = false
	m.lockUntil = now.Add(m.cfg.ResetLockout)
	m.lastFingers = -1
	m.lastProgress = 0

	m.thumbHold.Reset()
	m.fingers.Reset()
	m.swipe.Reset()
	m.swipeGate.Reset()
	m.captureGate.Reset()

	return []Event{{
		Type:   EventPhaseChanged,
		Phase:  string(PhaseCatalog),
		Index:  m.browseIdx,
		ItemID: m.items[m.browseIdx].ID,
	}}
}

// Share emits a share/export request for the selected look. Valid only in
// the results phase.
func (m *FittingRoom) Share() error {
	m.mu.Lock()
	if m.phase != PhaseResults {
		m.mu.Unlock()
		return fmt.Errorf("nothing to share in phase %s", m.phase)
	}
	ev := Event{
		Type:    EventShareRequested,
		Index:   m.selected,
		SceneID: m.looks[m.selected].Scene.ID,
		ItemID:  m.activeItem,
	}
	m.mu.Unlock()

	m.publish([]Event{ev})
	return nil
}

// LookStatus is the externally visible state of one look slot. Image bytes
// are served separately.
type LookStatus struct {
	SceneID string `json:"sceneId"`
	Label   string `json:"label"`
	Loading bool   `json:"loading"`
	HasImg  bool   `json:"hasImage"`
	Error   string `json:"error,omitempty"`
}

// State is a point-in-time snapshot of the fitting room.
type State struct {
	Phase       Phase        `json:"phase"`
	BrowseIndex int          `json:"browseIndex"`
	ItemID      string       `json:"itemId"`
	Countdown   int          `json:"countdown"`
	Selected    int          `json:"selected"`
	Looks       []LookStatus `json:"looks,omitempty"`
}

// State returns a snapshot of the machine for the HTTP state endpoint.
func (m *FittingRoom) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		Phase:       m.phase,
		BrowseIndex: m.browseIdx,
		ItemID:      m.items[m.browseIdx].ID,
		Countdown:   m.countdown,
		Selected:    m.selected,
	}
	for _, lk := range m.looks {
		st.Looks = append(st.Looks, LookStatus{
			SceneID: lk.Scene.ID,
			Label:   lk.Scene.Label,
			Loading: lk.Loading,
			HasImg:  len(lk.Image) > 0,
			Error:   lk.Err,
		})
	}
	return st
}

// Phase returns the current phase.
func (m *FittingRoom) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// SelectedLook returns the selected look index.
func (m *FittingRoom) SelectedLook() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// LookImage returns the rendered image for look slot i.
func (m *FittingRoom) LookImage(i int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i < 0 || i >= len(m.looks) {
		return nil, fmt.Errorf("look index %d out of range", i)
	}
	lk := m.looks[i]
	if lk.Loading {
		return nil, fmt.Errorf("look %s is still rendering", lk.Scene.ID)
	}
	if lk.Err != "" {
		return nil, fmt.Errorf("look %s failed: %s", lk.Scene.ID, lk.Err)
	}
	return lk.Image, nil
}

func (m *FittingRoom) publish(evs []Event) {
	if m.sink == nil {
		return
	}
	for _, ev := range evs {
		m.sink(ev)
	}
}
