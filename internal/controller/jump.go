package controller

// JumpState is the phase of the late-jump sequencer.
type JumpState uint8

const (
	// Grounded: the mover reported it can jump this tick.
	Grounded JumpState = iota
	// CoyoteWindow: off the ground without having jumped. A request is
	// still honored while the time since grounded is under LateJumpDelay.
	CoyoteWindow
	// Jumped: a jump was issued; no further jump until grounded again.
	Jumped
)

func (s JumpState) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case CoyoteWindow:
		return "coyote"
	case Jumped:
		return "jumped"
	default:
		return "unknown"
	}
}

type jumpSequencer struct {
	state         JumpState
	pressed       bool
	requested     bool
	sinceGrounded float64
}

// press tracks the input level. Releasing leaves an armed request in place
// until the next tick evaluates it.
func (j *jumpSequencer) press(pressed bool) {
	if pressed == j.pressed {
		return
	}
	j.pressed = pressed
	if pressed {
		j.requested = true
	}
}

// advance applies one tick of ground contact and returns the previous state.
func (j *jumpSequencer) advance(canJump bool, dt float64) JumpState {
	prev := j.state
	if canJump {
		j.sinceGrounded = 0
		j.state = Grounded
		return prev
	}
	j.sinceGrounded += dt
	if j.state == Grounded {
		j.state = CoyoteWindow
	}
	return prev
}

// consume honors a pending request if the sequencer allows it. A request
// that cannot be honored on the tick it is evaluated goes stale and is
// dropped, so presses made in mid-air never fire on landing.
func (j *jumpSequencer) consume(lateJumpDelay float64) bool {
	if !j.requested {
		return false
	}
	j.requested = false
	if j.state == Jumped || j.sinceGrounded >= lateJumpDelay {
		return false
	}
	j.state = Jumped
	return true
}
