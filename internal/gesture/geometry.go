// Package gesture turns per-frame hand landmarks into discrete, debounced
// gesture signals: pose classification, swipe tracking, and the temporal
// gates that keep jittery detections from firing twice.
package gesture

import (
	"math"

	"github.com/mbrandolfi/specchio/internal/detector"
)

// Tunable pose thresholds, in normalized landmark units.
const (
	// PinchThreshold is the maximum thumb-tip to index-tip distance that
	// still counts as a pinch.
	PinchThreshold = 0.08

	// ThumbsUpMargin is how far above the thumb MCP the thumb tip must sit
	// (y decreases upward) for a thumbs-up.
	ThumbsUpMargin = 0.04
)

// fingerTips and fingerPIPs pair the tip and PIP landmark of each non-thumb
// finger: index, middle, ring, pinky.
var (
	fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerPIPs = [4]int{detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
)

// dist2D is the planar Euclidean distance between two landmarks. Depth is
// ignored: the detector's z values are relative and too noisy to gate on.
func dist2D(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ExtendedFingerCount returns how many of the four non-thumb fingers are
// extended. A finger counts as extended iff its tip is farther from the
// wrist than its PIP joint.
func ExtendedFingerCount(h *detector.HandLandmarks) int {
	wrist := h.Points[detector.Wrist]
	count := 0
	for i := 0; i < 4; i++ {
		tip := dist2D(h.Points[fingerTips[i]], wrist)
		pip := dist2D(h.Points[fingerPIPs[i]], wrist)
		if tip > pip {
			count++
		}
	}
	return count
}

// IsFist reports whether all four non-thumb fingers are folded. The thumb
// does not participate, so a thumbs-up also reads as a fist.
func IsFist(h *detector.HandLandmarks) bool {
	return ExtendedFingerCount(h) == 0
}

// IsThumbsUp reports whether the thumb points upward while every non-thumb
// finger is folded. Both conditions are required: the thumb tip must sit at
// least ThumbsUpMargin above the thumb MCP, and each finger tip must be
// strictly closer to the wrist than its PIP.
func IsThumbsUp(h *detector.HandLandmarks) bool {
	thumbTip := h.Points[detector.ThumbTip]
	thumbMCP := h.Points[detector.ThumbMCP]
	if thumbTip.Y >= thumbMCP.Y-ThumbsUpMargin {
		return false
	}

	wrist := h.Points[detector.Wrist]
	for i := 0; i < 4; i++ {
		tip := dist2D(h.Points[fingerTips[i]], wrist)
		pip := dist2D(h.Points[fingerPIPs[i]], wrist)
		if tip >= pip {
			return false
		}
	}
	return true
}

// PinchDistance returns the distance between the thumb tip and the index
// tip. Callers compare it against PinchThreshold.
func PinchDistance(h *detector.HandLandmarks) float64 {
	return dist2D(h.Points[detector.ThumbTip], h.Points[detector.IndexTip])
}

// IsPinch reports whether the thumb and index tips are within
// PinchThreshold of each other.
func IsPinch(h *detector.HandLandmarks) bool {
	return PinchDistance(h) < PinchThreshold
}
