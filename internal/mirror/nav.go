package mirror

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mbrandolfi/specchio/internal/audio"
	"github.com/mbrandolfi/specchio/internal/detector"
	"github.com/mbrandolfi/specchio/internal/gesture"
)

// NavConfig holds the navigation machine's gesture timings.
type NavConfig struct {
	SwipeThreshold float64
	SwipeWindow    time.Duration
	SwipeCooldown  time.Duration
	FistCooldown   time.Duration
	PinchCooldown  time.Duration
}

// DefaultNavConfig returns the production timings.
func DefaultNavConfig() NavConfig {
	return NavConfig{
		SwipeThreshold: 0.15,
		SwipeWindow:    500 * time.Millisecond,
		SwipeCooldown:  1200 * time.Millisecond,
		FistCooldown:   1200 * time.Millisecond,
		PinchCooldown:  1200 * time.Millisecond,
	}
}

// Navigator owns the active-widget index and the navigation gestures: swipe
// to change widget, pinch to toggle the camera preview, fist to toggle
// music. Direct selection (footer buttons, voice commands) bypasses every
// gesture gate.
type Navigator struct {
	mu         sync.Mutex
	widgets    []Widget
	fittingIdx int
	index      int
	preview    bool
	player     audio.Player
	sink       Sink

	swipe     *gesture.SwipeDetector
	swipeGate *gesture.CooldownGate
	fistGate  *gesture.CooldownGate
	pinchGate *gesture.CooldownGate
}

// NewNavigator creates a navigator over the given widgets, starting at
// index 0. player may be nil if the kiosk has no audio.
func NewNavigator(widgets []Widget, cfg NavConfig, player audio.Player, sink Sink) *Navigator {
	fittingIdx := -1
	for i, w := range widgets {
		if w.ID == FittingWidgetID {
			fittingIdx = i
			break
		}
	}

	return &Navigator{
		widgets:    widgets,
		fittingIdx: fittingIdx,
		player:     player,
		sink:       sink,
		swipe:      gesture.NewSwipeDetector(cfg.SwipeThreshold, cfg.SwipeWindow),
		swipeGate:  gesture.NewCooldownGate(cfg.SwipeCooldown),
		fistGate:   gesture.NewCooldownGate(cfg.FistCooldown),
		pinchGate:  gesture.NewCooldownGate(cfg.PinchCooldown),
	}
}

// HandleFrame interprets one frame's landmarks (nil when no hand was
// detected) and returns the events it emitted. Pinch and fist outrank swipe:
// either one abandons the current swipe baseline.
func (n *Navigator) HandleFrame(hand *detector.HandLandmarks, now time.Time) []Event {
	n.mu.Lock()
	evs := n.handleFrameLocked(hand, now)
	n.mu.Unlock()
	n.publish(evs)
	return evs
}

func (n *Navigator) handleFrameLocked(hand *detector.HandLandmarks, now time.Time) []Event {
	if hand == nil {
		n.swipe.Reset()
		return nil
	}

	switch {
	case gesture.IsPinch(hand):
		n.swipe.Reset()
		if !n.pinchGate.TryFire() {
			return nil
		}
		n.preview = !n.preview
		return []Event{{Type: EventPreviewToggled, On: n.preview}}

	case gesture.IsFist(hand):
		n.swipe.Reset()
		if !n.fistGate.TryFire() {
			return nil
		}
		return n.toggleMusicLocked()
	}

	dir := n.swipe.Sample(hand.Points[detector.MiddleMCP].X, now)
	if dir == gesture.SwipeNone || !n.swipeGate.TryFire() {
		return nil
	}

	count := len(n.widgets)
	switch dir {
	case gesture.SwipeLeft:
		n.index = (n.index + 1) % count
	case gesture.SwipeRight:
		n.index = (n.index - 1 + count) % count
	}
	return []Event{n.widgetEventLocked()}
}

func (n *Navigator) toggleMusicLocked() []Event {
	if n.player == nil {
		return nil
	}
	playing := n.player.Playing()
	var err error
	if playing {
		err = n.player.Stop()
	} else {
		err = n.player.Start()
	}
	if err != nil {
		log.Printf("music toggle: %v", err)
		return []Event{{Type: EventMusicToggled, On: playing}}
	}
	return []Event{{Type: EventMusicToggled, On: !playing}}
}

func (n *Navigator) widgetEventLocked() Event {
	return Event{
		Type:   EventWidgetChanged,
		Index:  n.index,
		Widget: n.widgets[n.index].ID,
	}
}

// Select jumps straight to a widget, bypassing gesture cooldowns. Used by
// the footer buttons and voice commands.
func (n *Navigator) Select(index int) error {
	n.mu.Lock()
	if index < 0 || index >= len(n.widgets) {
		n.mu.Unlock()
		return fmt.Errorf("widget index %d out of range", index)
	}
	n.index = index
	n.swipe.Reset()
	ev := n.widgetEventLocked()
	n.mu.Unlock()

	n.publish([]Event{ev})
	return nil
}

// ActiveIndex returns the active widget index.
func (n *Navigator) ActiveIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

// FittingActive reports whether the fitting-room widget is active.
func (n *Navigator) FittingActive() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fittingIdx >= 0 && n.index == n.fittingIdx
}

// PreviewVisible reports the camera-preview flag.
func (n *Navigator) PreviewVisible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.preview
}

// MusicPlaying reports whether the audio collaborator is playing.
func (n *Navigator) MusicPlaying() bool {
	return n.player != nil && n.player.Playing()
}

// Widgets returns the widget carousel.
func (n *Navigator) Widgets() []Widget {
	return n.widgets
}

func (n *Navigator) publish(evs []Event) {
	if n.sink == nil {
		return
	}
	for _, ev := range evs {
		n.sink(ev)
	}
}
