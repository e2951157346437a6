package gesture

import "time"

// SwipeDirection is the outcome of one swipe-tracker sample.
type SwipeDirection int

const (
	SwipeNone SwipeDirection = iota
	SwipeLeft
	SwipeRight
)

func (d SwipeDirection) String() string {
	switch d {
	case SwipeLeft:
		return "left"
	case SwipeRight:
		return "right"
	default:
		return "none"
	}
}

// SwipeDetector tracks the horizontal position of a hand reference point
// across frames and fires when it crosses a threshold within a time window.
//
// The window is self-rebaselining: once a tracked hand has been observed for
// the full window without crossing the threshold, tracking restarts from the
// current position rather than stopping. A hand that drifts slowly therefore
// keeps resetting its own baseline and never fires.
type SwipeDetector struct {
	threshold float64
	window    time.Duration

	tracking  bool
	startX    float64
	startTime time.Time
}

// NewSwipeDetector creates a detector that fires when |Δx| exceeds threshold
// within window of the tracking baseline.
func NewSwipeDetector(threshold float64, window time.Duration) *SwipeDetector {
	return &SwipeDetector{threshold: threshold, window: window}
}

// Sample feeds one frame's x coordinate. It returns the swipe direction if
// this sample completed a swipe, or SwipeNone. The caller supplies the frame
// timestamp so interpretation stays deterministic under test.
func (d *SwipeDetector) Sample(x float64, now time.Time) SwipeDirection {
	if !d.tracking {
		d.tracking = true
		d.startX = x
		d.startTime = now
		return SwipeNone
	}

	if now.Sub(d.startTime) >= d.window {
		// Window expired without a crossing: rebaseline, don't fire.
		d.startX = x
		d.startTime = now
		return SwipeNone
	}

	dx := x - d.startX
	switch {
	case dx > d.threshold:
		d.tracking = false
		return SwipeRight
	case dx < -d.threshold:
		d.tracking = false
		return SwipeLeft
	}
	return SwipeNone
}

// Tracking reports whether a baseline is currently held.
func (d *SwipeDetector) Tracking() bool {
	return d.tracking
}

// Reset abandons the current baseline. Called when the hand disappears or a
// non-swipe gesture takes over the frame stream.
func (d *SwipeDetector) Reset() {
	d.tracking = false
}
