package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Pose fixtures used across the gesture and mirror tests. All of them place
// the wrist at (0.5, 0.8) and satisfy the tip-versus-PIP wrist-distance rule
// the geometry helpers apply: an extended finger has its tip farther from the
// wrist than its PIP, a folded finger has it closer.

// fingerJoint holds the landmark indices for one non-thumb finger.
type fingerJoint struct {
	mcp, pip, dip, tip int
}

var fingerJoints = [4]fingerJoint{
	{IndexMCP, IndexPIP, IndexDIP, IndexTip},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	{RingMCP, RingPIP, RingDIP, RingTip},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// Extended and folded joint positions per finger, index order matching
// fingerJoints (index, middle, ring, pinky). Each row is mcp, pip, dip, tip.
var extendedFingers = [4][4]Point3D{
	{{X: 0.55, Y: 0.68}, {X: 0.57, Y: 0.55}, {X: 0.58, Y: 0.45}, {X: 0.58, Y: 0.35}},
	{{X: 0.50, Y: 0.66}, {X: 0.50, Y: 0.52}, {X: 0.50, Y: 0.40}, {X: 0.50, Y: 0.28}},
	{{X: 0.45, Y: 0.68}, {X: 0.43, Y: 0.55}, {X: 0.42, Y: 0.45}, {X: 0.42, Y: 0.35}},
	{{X: 0.40, Y: 0.70}, {X: 0.37, Y: 0.60}, {X: 0.35, Y: 0.50}, {X: 0.34, Y: 0.42}},
}

var foldedFingers = [4][4]Point3D{
	{{X: 0.55, Y: 0.70}, {X: 0.55, Y: 0.68}, {X: 0.52, Y: 0.70}, {X: 0.50, Y: 0.72}},
	{{X: 0.50, Y: 0.68}, {X: 0.50, Y: 0.66}, {X: 0.47, Y: 0.68}, {X: 0.45, Y: 0.70}},
	{{X: 0.45, Y: 0.70}, {X: 0.45, Y: 0.68}, {X: 0.42, Y: 0.70}, {X: 0.42, Y: 0.74}},
	{{X: 0.40, Y: 0.72}, {X: 0.40, Y: 0.70}, {X: 0.37, Y: 0.72}, {X: 0.38, Y: 0.76}},
}

func baseHand() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}
	return h
}

func setFinger(h *HandLandmarks, finger int, joints [4]Point3D) {
	fj := fingerJoints[finger]
	h.Points[fj.mcp] = joints[0]
	h.Points[fj.pip] = joints[1]
	h.Points[fj.dip] = joints[2]
	h.Points[fj.tip] = joints[3]
}

// setNeutralThumb folds the thumb against the palm: the tip sits below the
// MCP minus the thumbs-up margin and well away from the index tip so the
// pose reads as neither a thumbs-up nor a pinch.
func setNeutralThumb(h *HandLandmarks) {
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65}
	h.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.64}
	h.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.64}
}

// FingerCountLandmarks returns a hand with the first n non-thumb fingers
// extended (index first) and the rest folded. n is clamped to [0,4].
func FingerCountLandmarks(n int) HandLandmarks {
	if n < 0 {
		n = 0
	}
	if n > 4 {
		n = 4
	}

	h := baseHand()
	setNeutralThumb(&h)
	for f := 0; f < 4; f++ {
		if f < n {
			setFinger(&h, f, extendedFingers[f])
		} else {
			setFinger(&h, f, foldedFingers[f])
		}
	}
	return h
}

// FistLandmarks returns a hand with all four non-thumb fingers folded and a
// neutral thumb.
func FistLandmarks() HandLandmarks {
	return FingerCountLandmarks(0)
}

// OpenPalmLandmarks returns a hand with all four fingers extended and the
// thumb out to the side.
func OpenPalmLandmarks() HandLandmarks {
	h := FingerCountLandmarks(4)
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70}
	h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65}
	h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60}
	return h
}

// ThumbsUpLandmarks returns a hand with the thumb pointing up and all four
// fingers folded.
func ThumbsUpLandmarks() HandLandmarks {
	h := FingerCountLandmarks(0)
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65}
	h.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50}
	h.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35}
	return h
}

// PinchLandmarks returns a hand with the thumb tip touching the index tip
// and the remaining fingers extended.
func PinchLandmarks() HandLandmarks {
	h := baseHand()
	setFinger(&h, 0, [4]Point3D{{X: 0.55, Y: 0.68}, {X: 0.57, Y: 0.55}, {X: 0.58, Y: 0.52}, {X: 0.58, Y: 0.50}})
	for f := 1; f < 4; f++ {
		setFinger(&h, f, extendedFingers[f])
	}
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70}
	h.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.60}
	h.Points[ThumbTip] = Point3D{X: 0.60, Y: 0.52}
	return h
}

// Shifted returns a copy of h with every landmark translated by (dx, dy).
// Useful for synthesizing swipe sequences in tests.
func Shifted(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}
