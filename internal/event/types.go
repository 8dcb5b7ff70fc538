package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventActorJumped     = "actor.jumped"
	EventActorLanded     = "actor.landed"
	EventActorLeftGround = "actor.left_ground"
)

// JumpEvent is published when a buffered jump request is honored.
// SinceGrounded is how long the actor had been off the ground at that moment;
// a non-zero value means the jump was saved by the late-jump window.
type JumpEvent struct {
	ActorID       int
	Tick          uint64
	Position      mgl64.Vec3
	SinceGrounded float64
}

type LandEvent struct {
	ActorID  int
	Tick     uint64
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

type LeftGroundEvent struct {
	ActorID  int
	Tick     uint64
	Position mgl64.Vec3
}
