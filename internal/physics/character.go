package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Character is a kinematic box mover over a voxel store. It does not simulate
// forces: each Tick it applies the last walk displacement plus its own
// vertical speed, and stops at solid cells.
type Character struct {
	store BlockStore
	shape Shape

	position      mgl64.Vec3
	walk          mgl64.Vec3
	gravity       mgl64.Vec3
	jumpSpeed     float64
	verticalSpeed float64
	maxFallSpeed  float64
	onGround      bool
}

type CharacterOption func(*Character)

func WithShape(s Shape) CharacterOption {
	return func(c *Character) {
		if s.Width > 0 && s.Height > 0 {
			c.shape = s
		}
	}
}

func WithMaxFallSpeed(v float64) CharacterOption {
	return func(c *Character) {
		if v > 0 {
			c.maxFallSpeed = v
		}
	}
}

func NewCharacter(store BlockStore, pos mgl64.Vec3, opts ...CharacterOption) *Character {
	c := &Character{
		store:        store,
		shape:        DefaultShape(),
		position:     pos,
		maxFallSpeed: DefaultMaxFallSpeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.onGround = isStandingOnSolidBlock(c.position, c.shape, c.store)
	return c
}

func (c *Character) OnGround() bool {
	return c.onGround && c.verticalSpeed <= 0
}

func (c *Character) CanJump() bool {
	return c.OnGround()
}

// Jump launches unconditionally; callers decide whether a jump is allowed.
func (c *Character) Jump() {
	c.verticalSpeed = c.jumpSpeed
	c.onGround = false
}

// SetWalkDirection sets the horizontal displacement applied on every Tick
// until it is replaced.
func (c *Character) SetWalkDirection(d mgl64.Vec3) {
	c.walk = mgl64.Vec3{d.X(), 0, d.Z()}
}

func (c *Character) SetGravity(g mgl64.Vec3) { c.gravity = g }
func (c *Character) SetJumpSpeed(v float64)  { c.jumpSpeed = v }

func (c *Character) WorldPosition() mgl64.Vec3 { return c.position }
func (c *Character) Shape() Shape              { return c.shape }
func (c *Character) Walk() mgl64.Vec3          { return c.walk }
func (c *Character) VerticalSpeed() float64    { return c.verticalSpeed }
func (c *Character) AABB() AABB                { return c.shape.AABB(c.position) }

// Teleport moves the character without sweeping and drops any motion.
func (c *Character) Teleport(pos mgl64.Vec3) {
	c.position = pos
	c.walk = mgl64.Vec3{}
	c.verticalSpeed = 0
	c.onGround = isStandingOnSolidBlock(c.position, c.shape, c.store)
}

func (c *Character) Tick(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}

	c.verticalSpeed += c.gravity.Y() * dt
	if c.verticalSpeed < -c.maxFallSpeed {
		c.verticalSpeed = -c.maxFallSpeed
	}

	delta := c.walk.Add(mgl64.Vec3{0, c.verticalSpeed * dt, 0})
	pos, applied := ResolveMovement(c.position, delta, c.shape, c.store)
	c.position = pos
	if applied.Y() == 0 && delta.Y() != 0 {
		c.verticalSpeed = 0
	}

	c.onGround = isStandingOnSolidBlock(c.position, c.shape, c.store)
	if c.onGround && c.verticalSpeed < 0 {
		c.verticalSpeed = 0
	}
}
