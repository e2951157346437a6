// Package audio provides the background-music collaborator the navigation
// fist gesture toggles. Playback is delegated to an external player process.
package audio

import (
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// Player controls background music playback.
type Player interface {
	Start() error
	Stop() error
	Playing() bool
}

// ExecPlayer runs an external player command (mpg123, mpv, afplay, ...) and
// manages its lifecycle.
type ExecPlayer struct {
	name string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewExecPlayer creates a player that spawns the given command on Start.
func NewExecPlayer(name string, args ...string) *ExecPlayer {
	return &ExecPlayer{name: name, args: args}
}

// Start launches the player process if it is not already running.
func (p *ExecPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return nil
	}

	cmd := exec.Command(p.name, p.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	p.cmd = cmd

	// Reap the process and clear state if it exits on its own.
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
			if err != nil {
				log.Printf("audio player exited: %v", err)
			}
		}
		p.mu.Unlock()
	}()

	return nil
}

// Stop kills the player process if it is running.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	cmd := p.cmd
	p.cmd = nil
	p.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// Playing reports whether the player process is running.
func (p *ExecPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// MockPlayer is a Player for tests and for kiosks without audio.
type MockPlayer struct {
	mu      sync.Mutex
	playing bool
	starts  int
	stops   int
}

// NewMockPlayer creates a stopped MockPlayer.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

func (p *MockPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.starts++
	return nil
}

func (p *MockPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.stops++
	return nil
}

func (p *MockPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Starts returns how many times Start was called.
func (p *MockPlayer) Starts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts
}

// Stops returns how many times Stop was called.
func (p *MockPlayer) Stops() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}
