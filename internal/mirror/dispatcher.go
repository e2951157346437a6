package mirror

import (
	"sync"
	"time"

	"github.com/mbrandolfi/specchio/internal/detector"
)

// Dispatcher routes each detector frame to exactly one interpreter: the
// fitting room while its widget is active, the navigator otherwise. The two
// interpreters keep fully independent debounce and tracking state; when the
// hot interpreter changes, the one going cold is flushed with a no-hand
// frame so a half-tracked swipe cannot leak across the switch.
type Dispatcher struct {
	nav     *Navigator
	fitting *FittingRoom

	mu          sync.Mutex
	fittingHot  bool
	initialized bool
}

// NewDispatcher creates a dispatcher over the two interpreters.
func NewDispatcher(nav *Navigator, fitting *FittingRoom) *Dispatcher {
	return &Dispatcher{nav: nav, fitting: fitting}
}

// HandleFrame forwards one frame (nil when no hand was detected) to the hot
// interpreter and returns the events it emitted.
func (d *Dispatcher) HandleFrame(hand *detector.HandLandmarks, now time.Time) []Event {
	hot := d.nav.FittingActive()

	d.mu.Lock()
	if d.initialized && hot != d.fittingHot {
		if d.fittingHot {
			d.fitting.HandleFrame(nil, now)
		} else {
			d.nav.HandleFrame(nil, now)
		}
	}
	d.fittingHot = hot
	d.initialized = true
	d.mu.Unlock()

	if hot {
		return d.fitting.HandleFrame(hand, now)
	}
	return d.nav.HandleFrame(hand, now)
}

// Navigator returns the navigation machine.
func (d *Dispatcher) Navigator() *Navigator {
	return d.nav
}

// FittingRoom returns the fitting-room machine.
func (d *Dispatcher) FittingRoom() *FittingRoom {
	return d.fitting
}
