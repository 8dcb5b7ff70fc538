package controller

import "github.com/go-gl/mathgl/mgl64"

const (
	groundAccelerate = 100.0
	groundDecelerate = 30.0
	airAccelerate    = 4.0

	wishSpeedEpsilon = 1e-6
)

// move samples the observed velocity over sampleDt and spends at most
// budget seconds of acceleration.
func (c *Controller) move(sampleDt, budget float64) {
	pos := c.position.WorldPosition()
	observed := pos.Sub(c.lastKnownPosition).Mul(1 / sampleDt)
	// vertical motion belongs to the mover's gravity and jump
	observed[1] = 0
	c.lastKnownPosition = pos

	wishDir, wishSpeed := WishVelocity(c.Basis(), c.axes, c.params.MaxSpeed)
	c.velocity = Accelerate(observed, wishDir, wishSpeed, c.mover.OnGround(), budget)
	c.mover.SetWalkDirection(c.velocity.Mul(c.params.PhysicsStep))
}

// WishVelocity converts axis intents into a unit wish direction and a target
// speed. Diagonal input is normalized so it never exceeds maxSpeed.
func WishVelocity(b Basis, a Axes, maxSpeed float64) (mgl64.Vec3, float64) {
	wish := b.Right.Mul(a.Right - a.Left).Add(b.Forward.Mul(a.Forward - a.Backward))
	speed := wish.Len()
	if speed < wishSpeedEpsilon {
		return mgl64.Vec3{}, 0
	}
	wish = wish.Mul(1 / speed)
	if speed > 1 {
		speed = 1
	}
	return wish, speed * maxSpeed
}

// Accelerate moves observed toward wishDir*wishSpeed by at most
// acceleration*dt, where the acceleration depends on whether the actor is
// speeding up along wishDir and whether it stands on the ground.
func Accelerate(observed, wishDir mgl64.Vec3, wishSpeed float64, onGround bool, dt float64) mgl64.Vec3 {
	accel := acceleration(wishSpeed > observed.Dot(wishDir), onGround)

	delta := wishDir.Mul(wishSpeed).Sub(observed)
	deltaLen := delta.Len()
	maxDelta := accel * dt
	if maxDelta >= deltaLen {
		return observed.Add(delta)
	}
	return observed.Add(delta.Mul(maxDelta / deltaLen))
}

func acceleration(speedingUp, onGround bool) float64 {
	if !onGround {
		return airAccelerate
	}
	if speedingUp {
		return groundAccelerate
	}
	return groundDecelerate
}
