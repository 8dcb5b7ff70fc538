package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	maxPitch = 89.0
	maxRoll  = 89.0
)

var (
	WorldForward = mgl64.Vec3{0, 0, 1}
	WorldRight   = mgl64.Vec3{1, 0, 0}
	WorldUp      = mgl64.Vec3{0, 1, 0}
)

// Basis is the horizontal movement frame derived from yaw alone.
// A published Basis is never mutated.
type Basis struct {
	Forward mgl64.Vec3
	Right   mgl64.Vec3
}

// Rotate accumulates look deltas in degrees. Yaw wraps into [0,360);
// pitch and roll clamp to [-89,89]. Non-finite deltas are ignored.
func (c *Controller) Rotate(dYaw, dPitch, dRoll float64) {
	dYaw, dPitch, dRoll = finiteOrZero(dYaw), finiteOrZero(dPitch), finiteOrZero(dRoll)
	if dYaw == 0 && dPitch == 0 && dRoll == 0 {
		return
	}
	c.yaw = wrapYaw(c.yaw + dYaw)
	c.pitch = clampAngle(c.pitch+dPitch, maxPitch)
	c.roll = clampAngle(c.roll+dRoll, maxRoll)
	c.updateLook()
}

// Basis returns the most recently published movement basis.
func (c *Controller) Basis() Basis {
	if b := c.basis.Load(); b != nil {
		return *b
	}
	return Basis{Forward: WorldForward, Right: WorldRight}
}

// LookRotation is the camera rotation: yaw about up, then pitch about
// right, then roll about forward.
func (c *Controller) LookRotation() mgl64.Quat {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(c.yaw), WorldUp)
	pitch := mgl64.QuatRotate(mgl64.DegToRad(c.pitch), WorldRight)
	roll := mgl64.QuatRotate(mgl64.DegToRad(c.roll), WorldForward)
	return yaw.Mul(pitch).Mul(roll)
}

func (c *Controller) updateLook() {
	if c.pivot != nil {
		c.pivot.SetRotation(c.LookRotation())
	}
	c.basis.Store(yawBasis(c.yaw))
}

func yawBasis(yawDeg float64) *Basis {
	r := mgl64.QuatRotate(mgl64.DegToRad(yawDeg), WorldUp)
	return &Basis{
		Forward: horizontal(r.Rotate(WorldForward)),
		Right:   horizontal(r.Rotate(WorldRight)),
	}
}

func horizontal(v mgl64.Vec3) mgl64.Vec3 {
	v[1] = 0
	return v.Normalize()
}

func wrapYaw(yaw float64) float64 {
	switch {
	case yaw < 0:
		yaw += 360
	case yaw >= 360:
		yaw -= 360
	}
	if yaw < 0 || yaw >= 360 {
		// more than a full turn in one call
		yaw = math.Mod(yaw, 360)
		if yaw < 0 {
			yaw += 360
		}
	}
	if yaw >= 360 {
		return 0
	}
	return yaw
}

func clampAngle(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
