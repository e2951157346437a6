package gesture

import (
	"sync"
	"time"
)

// CooldownGate rate-limits one gesture channel. After a successful TryFire
// the gate stays closed for the configured duration; the reopening is done
// by a scheduled callback so the window is exact wall-clock regardless of
// frame rate. Timer callbacks run on their own goroutine, hence the mutex.
type CooldownGate struct {
	mu       sync.Mutex
	duration time.Duration
	active   bool
	timer    *time.Timer
}

// NewCooldownGate creates a gate with the given cooldown window.
func NewCooldownGate(d time.Duration) *CooldownGate {
	return &CooldownGate{duration: d}
}

// TryFire attempts to fire the channel. It returns true and closes the gate
// if the channel was open; any further attempts inside the window return
// false.
func (g *CooldownGate) TryFire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active {
		return false
	}
	g.active = true
	g.timer = time.AfterFunc(g.duration, func() {
		g.mu.Lock()
		g.active = false
		g.timer = nil
		g.mu.Unlock()
	})
	return true
}

// Active reports whether the gate is currently closed.
func (g *CooldownGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Reset reopens the gate immediately, cancelling any pending reopening.
func (g *CooldownGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.active = false
}

// HoldAccumulator requires a raw condition to hold across a number of frames
// before firing. While the condition holds the counter climbs; while it does
// not, the counter either decays by one per frame or snaps back to zero,
// depending on configuration. Reaching the threshold fires exactly once and
// zeroes the counter. The counter never goes below zero or above the
// threshold.
type HoldAccumulator struct {
	threshold int
	decay     bool
	count     int
}

// NewHoldAccumulator creates an accumulator that fires after threshold
// consecutive (or, with decay, net) holding frames. With decay=true a
// non-holding frame subtracts one instead of clearing the progress.
func NewHoldAccumulator(threshold int, decay bool) *HoldAccumulator {
	return &HoldAccumulator{threshold: threshold, decay: decay}
}

// Update feeds one frame's condition. It returns true on the frame the
// accumulated hold reaches the threshold.
func (a *HoldAccumulator) Update(holding bool) bool {
	if !holding {
		if a.decay {
			if a.count > 0 {
				a.count--
			}
		} else {
			a.count = 0
		}
		return false
	}

	a.count++
	if a.count >= a.threshold {
		a.count = 0
		return true
	}
	return false
}

// Progress returns the accumulated fraction in [0,1], for progress-ring UI.
func (a *HoldAccumulator) Progress() float64 {
	if a.threshold <= 0 {
		return 0
	}
	return float64(a.count) / float64(a.threshold)
}

// Reset clears any accumulated hold.
func (a *HoldAccumulator) Reset() {
	a.count = 0
}

// StabilityBuffer accepts a discrete reading only after it has been observed
// for its full capacity of consecutive frames. It is a bounded FIFO: the
// oldest reading is evicted once the buffer is full, so a single divergent
// frame forces the full run to be observed again.
type StabilityBuffer struct {
	capacity int
	values   []int
}

// NewStabilityBuffer creates a buffer requiring capacity consecutive
// identical readings.
func NewStabilityBuffer(capacity int) *StabilityBuffer {
	return &StabilityBuffer{
		capacity: capacity,
		values:   make([]int, 0, capacity),
	}
}

// Push appends one reading and reports whether the buffer is now full of
// identical values; if so it returns that stable value.
func (b *StabilityBuffer) Push(v int) (stable int, ok bool) {
	if len(b.values) >= b.capacity {
		copy(b.values, b.values[1:])
		b.values = b.values[:b.capacity-1]
	}
	b.values = append(b.values, v)

	if len(b.values) < b.capacity {
		return 0, false
	}
	for _, x := range b.values {
		if x != b.values[0] {
			return 0, false
		}
	}
	return b.values[0], true
}

// Len returns the number of buffered readings.
func (b *StabilityBuffer) Len() int {
	return len(b.values)
}

// Reset empties the buffer.
func (b *StabilityBuffer) Reset() {
	b.values = b.values[:0]
}
