package gesture

import (
	"testing"
	"time"
)

func TestCooldownGate_FiresOncePerWindow(t *testing.T) {
	g := NewCooldownGate(time.Hour)

	if !g.TryFire() {
		t.Fatal("first TryFire should succeed")
	}
	for i := 0; i < 5; i++ {
		if g.TryFire() {
			t.Fatal("TryFire inside the cooldown window should fail")
		}
	}
	if !g.Active() {
		t.Error("gate should report active inside the window")
	}
}

func TestCooldownGate_ReopensAfterWindow(t *testing.T) {
	g := NewCooldownGate(10 * time.Millisecond)

	if !g.TryFire() {
		t.Fatal("first TryFire should succeed")
	}

	deadline := time.Now().Add(time.Second)
	for g.Active() {
		if time.Now().After(deadline) {
			t.Fatal("gate never reopened")
		}
		time.Sleep(time.Millisecond)
	}

	if !g.TryFire() {
		t.Fatal("TryFire after the window should succeed")
	}
}

func TestCooldownGate_Reset(t *testing.T) {
	g := NewCooldownGate(time.Hour)

	g.TryFire()
	g.Reset()

	if g.Active() {
		t.Error("gate should be open after Reset")
	}
	if !g.TryFire() {
		t.Error("TryFire after Reset should succeed")
	}
}

func TestHoldAccumulator_FiresAtThreshold(t *testing.T) {
	a := NewHoldAccumulator(3, false)

	if a.Update(true) {
		t.Fatal("fired after 1 frame")
	}
	if a.Update(true) {
		t.Fatal("fired after 2 frames")
	}
	if !a.Update(true) {
		t.Fatal("expected fire on the third holding frame")
	}

	// The counter zeroes on fire: the hold must be rebuilt from scratch.
	if a.Update(true) {
		t.Fatal("fired again immediately after firing")
	}
	if a.Progress() <= 0 {
		t.Error("expected progress to climb again after firing")
	}
}

func TestHoldAccumulator_SnapToZeroWithoutDecay(t *testing.T) {
	a := NewHoldAccumulator(3, false)

	a.Update(true)
	a.Update(true)
	a.Update(false)

	if a.Progress() != 0 {
		t.Fatalf("expected progress 0 after release, got %f", a.Progress())
	}
}

func TestHoldAccumulator_Decay(t *testing.T) {
	a := NewHoldAccumulator(4, true)

	a.Update(true)
	a.Update(true)
	a.Update(true) // count 3

	a.Update(false) // count 2
	if got := a.Progress(); got != 0.5 {
		t.Fatalf("expected progress 0.5 after one decay frame, got %f", got)
	}

	// Two more holding frames reach the threshold
	if a.Update(true) {
		t.Fatal("fired early")
	}
	if !a.Update(true) {
		t.Fatal("expected fire once the decayed count climbs back to the threshold")
	}
}

func TestHoldAccumulator_DecayNeverGoesNegative(t *testing.T) {
	a := NewHoldAccumulator(3, true)

	a.Update(false)
	a.Update(false)
	if a.Progress() != 0 {
		t.Fatalf("expected progress to stay at 0, got %f", a.Progress())
	}

	// Still takes the full threshold to fire
	a.Update(true)
	a.Update(true)
	if !a.Update(true) {
		t.Fatal("expected fire after threshold holding frames")
	}
}

func TestHoldAccumulator_Reset(t *testing.T) {
	a := NewHoldAccumulator(3, true)
	a.Update(true)
	a.Update(true)
	a.Reset()

	if a.Progress() != 0 {
		t.Fatalf("expected progress 0 after Reset, got %f", a.Progress())
	}
}

func TestStabilityBuffer_StableAfterFullRun(t *testing.T) {
	b := NewStabilityBuffer(8)

	for i := 0; i < 7; i++ {
		if _, ok := b.Push(2); ok {
			t.Fatalf("stable after %d readings", i+1)
		}
	}
	stable, ok := b.Push(2)
	if !ok {
		t.Fatal("expected stability after 8 identical readings")
	}
	if stable != 2 {
		t.Fatalf("expected stable value 2, got %d", stable)
	}
}

func TestStabilityBuffer_DivergentReadingForcesFullRun(t *testing.T) {
	b := NewStabilityBuffer(8)

	for i := 0; i < 7; i++ {
		b.Push(3)
	}
	if _, ok := b.Push(1); ok {
		t.Fatal("a divergent reading must not be stable")
	}

	// Seven more 1s leave one stale 3 in the buffer
	for i := 0; i < 6; i++ {
		if _, ok := b.Push(1); ok {
			t.Fatalf("stable with a stale reading still buffered (step %d)", i)
		}
	}
	stable, ok := b.Push(1)
	if !ok {
		t.Fatal("expected stability once the stale reading was evicted")
	}
	if stable != 1 {
		t.Fatalf("expected stable value 1, got %d", stable)
	}
}

func TestStabilityBuffer_Reset(t *testing.T) {
	b := NewStabilityBuffer(4)
	b.Push(1)
	b.Push(1)
	b.Reset()

	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after Reset, got %d", b.Len())
	}
	for i := 0; i < 3; i++ {
		if _, ok := b.Push(1); ok {
			t.Fatal("stable before a full run after Reset")
		}
	}
	if _, ok := b.Push(1); !ok {
		t.Fatal("expected stability after a full run following Reset")
	}
}
