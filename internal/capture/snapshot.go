package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Snapshotter produces the reference photo the fitting room sends to the
// rendering service: one camera frame, flipped horizontally so it matches
// the user's mirrored self-view, encoded as JPEG.
type Snapshotter struct {
	camera Camera
}

// NewSnapshotter creates a Snapshotter reading from the given camera.
func NewSnapshotter(camera Camera) *Snapshotter {
	return &Snapshotter{camera: camera}
}

// Snapshot captures and encodes a single mirrored frame.
func (s *Snapshotter) Snapshot() ([]byte, error) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	mirrored := gocv.NewMat()
	defer mirrored.Close()
	gocv.Flip(*frame, &mirrored, 1)

	buf, err := gocv.IMEncode(".jpg", mirrored)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	defer buf.Close()

	// IMEncode's buffer is freed on Close; hand back a copy.
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}
