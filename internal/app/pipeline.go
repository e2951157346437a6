package app

import (
	"log"
	"time"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection
// 4. Feed the primary hand (or its absence) to the gesture dispatcher
// 5. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	stopCh := a.stopChan()

	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if interpretation is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					// Tell the dispatcher the hand is gone so in-flight
					// swipes and holds do not resume stale.
					a.dispatcher.HandleFrame(nil, time.Now())
					log.Println("Switched to idle mode")
				}
			}

			// Skip further processing if not in active mode
			if !activeMode {
				frame.Close()
				continue
			}

			// Step 2: Hand detection
			hands, err := a.Detector().Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			// Step 3: Feed the primary hand to the dispatcher. An empty
			// frame is meaningful too: it releases held gestures.
			if len(hands) == 0 {
				a.dispatcher.HandleFrame(nil, time.Now())
				continue
			}
			a.dispatcher.HandleFrame(&hands[0], time.Now())
		}
	}
}
