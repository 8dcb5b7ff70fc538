package controller

import "testing"

func TestLateJumpWindow(t *testing.T) {
	tests := []struct {
		name          string
		sinceGrounded float64
		wantJump      bool
	}{
		{"inside window", 0.09, true},
		{"outside window", 0.11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStubMover(true)
			c := newTestController(t, m)
			c.SetLateJumpDelay(0.10)

			tick(t, c, m, 1.0/60.0)
			m.grounded = false
			c.SetJump(true)
			tick(t, c, m, tt.sinceGrounded)

			approxEqual(t, c.TimeSinceGrounded(), tt.sinceGrounded, 1e-12, "sinceGrounded")
			if got := m.jumps == 1; got != tt.wantJump {
				t.Fatalf("jumped = %t, want %t", got, tt.wantJump)
			}
		})
	}
}

func TestJumpRequiresRisingEdge(t *testing.T) {
	m := newStubMover(true)
	c := newTestController(t, m)

	c.SetJump(true)
	tick(t, c, m, 1.0/60.0)
	if m.jumps != 1 {
		t.Fatalf("jumps = %d, want 1", m.jumps)
	}

	// held: landing again must not re-trigger
	c.SetJump(true)
	tick(t, c, m, 1.0/60.0)
	tick(t, c, m, 1.0/60.0)
	if m.jumps != 1 {
		t.Fatalf("jumps while held = %d, want 1", m.jumps)
	}

	c.SetJump(false)
	c.SetJump(true)
	tick(t, c, m, 1.0/60.0)
	if m.jumps != 2 {
		t.Fatalf("jumps after re-press = %d, want 2", m.jumps)
	}
}

func TestReleaseKeepsArmedRequest(t *testing.T) {
	m := newStubMover(true)
	c := newTestController(t, m)

	// tap shorter than a tick: pressed and released between steps
	c.SetJump(true)
	c.SetJump(false)
	if !c.JumpRequested() {
		t.Fatal("request cleared by release, want still armed")
	}
	tick(t, c, m, 1.0/60.0)

	if m.jumps != 1 {
		t.Fatalf("jumps = %d, want 1", m.jumps)
	}
	if c.JumpRequested() {
		t.Fatal("request still armed after being consumed")
	}
}

func TestStaleRequestIsNeverHonored(t *testing.T) {
	m := newStubMover(false)
	c := newTestController(t, m)

	// airborne past the window
	tick(t, c, m, 0.2)
	c.SetJump(true)
	tick(t, c, m, 1.0/60.0)
	if m.jumps != 0 {
		t.Fatalf("jumps = %d, want 0", m.jumps)
	}
	if c.JumpRequested() {
		t.Fatal("stale request still armed")
	}

	// landing with the key still held must not jump
	m.grounded = true
	tick(t, c, m, 1.0/60.0)
	if m.jumps != 0 {
		t.Fatalf("jumps after landing = %d, want 0", m.jumps)
	}
}

func TestNoDoubleJumpInsideWindow(t *testing.T) {
	m := newStubMover(true)
	c := newTestController(t, m)

	c.SetJump(true)
	tick(t, c, m, 1.0/60.0)
	m.grounded = false
	c.SetJump(false)
	c.SetJump(true)
	tick(t, c, m, 1.0/60.0)

	if m.jumps != 1 {
		t.Fatalf("jumps = %d, want 1", m.jumps)
	}
	if c.JumpState() != Jumped {
		t.Fatalf("state = %v, want jumped", c.JumpState())
	}
}

func TestJumpSequencerTransitions(t *testing.T) {
	var j jumpSequencer

	if prev := j.advance(true, 0.1); prev != Grounded || j.state != Grounded {
		t.Fatalf("grounded tick: prev=%v state=%v", prev, j.state)
	}
	if prev := j.advance(false, 0.05); prev != Grounded || j.state != CoyoteWindow {
		t.Fatalf("leave ground: prev=%v state=%v", prev, j.state)
	}
	j.press(true)
	if !j.consume(0.1) || j.state != Jumped {
		t.Fatalf("consume in window: state=%v", j.state)
	}
	if prev := j.advance(false, 0.05); prev != Jumped || j.state != Jumped {
		t.Fatalf("airborne after jump: prev=%v state=%v", prev, j.state)
	}
	if prev := j.advance(true, 0.05); prev != Jumped || j.state != Grounded {
		t.Fatalf("landing: prev=%v state=%v", prev, j.state)
	}
	if j.sinceGrounded != 0 {
		t.Fatalf("sinceGrounded = %v, want 0", j.sinceGrounded)
	}
}

func TestJumpStateString(t *testing.T) {
	tests := map[JumpState]string{
		Grounded:      "grounded",
		CoyoteWindow:  "coyote",
		Jumped:        "jumped",
		JumpState(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("JumpState(%d).String() = %q, want %q", s, got, want)
		}
	}
}
