// Package controller implements the first-person movement model: an
// acceleration-limited velocity integrator, a late-jump sequencer and a
// clamped yaw/pitch/roll look integrator.
//
// A Controller never simulates collisions itself. It reads the actor's world
// position, asks a Mover whether the actor is on the ground, and hands the
// Mover one walk displacement per fixed step.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/Versifine/stride/internal/event"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNilMover    = errors.New("controller: mover is nil")
	ErrNilPosition = errors.New("controller: position source is nil")
	ErrInvalidStep = errors.New("controller: step duration must be positive and finite")
)

// Mover is the kinematic character capability the controller drives.
type Mover interface {
	OnGround() bool
	CanJump() bool
	Jump()
	SetWalkDirection(displacement mgl64.Vec3)
	SetGravity(gravity mgl64.Vec3)
	SetJumpSpeed(speed float64)
}

type PositionSource interface {
	WorldPosition() mgl64.Vec3
}

// Pivot receives the look rotation, typically the camera attachment point.
type Pivot interface {
	SetRotation(q mgl64.Quat)
}

type Publisher interface {
	Publish(eventName string, evt any)
}

type Params struct {
	MaxSpeed      float64
	LateJumpDelay float64
	Gravity       float64
	JumpSpeed     float64
	// PhysicsStep is the duration of one physics tick; walk commands are
	// expressed as displacement per tick.
	PhysicsStep float64
	// MaxStep caps the dt accepted by Step. Zero disables the cap.
	MaxStep float64
}

func DefaultParams() Params {
	return Params{
		MaxSpeed:      10,
		LateJumpDelay: 0.10,
		Gravity:       25,
		JumpSpeed:     8,
		PhysicsStep:   1.0 / 60.0,
		MaxStep:       0.25,
	}
}

// Axes are the four unsigned directional intents, each in [0,1].
type Axes struct {
	Forward  float64
	Backward float64
	Left     float64
	Right    float64
}

type Option func(*Controller)

func WithParams(p Params) Option {
	return func(c *Controller) { c.params = p }
}

func WithPivot(p Pivot) Option {
	return func(c *Controller) { c.pivot = p }
}

func WithEvents(pub Publisher) Option {
	return func(c *Controller) { c.events = pub }
}

func WithID(id int) Option {
	return func(c *Controller) { c.id = id }
}

type Controller struct {
	id       int
	mover    Mover
	position PositionSource
	pivot    Pivot
	events   Publisher
	params   Params

	yaw   float64
	pitch float64
	roll  float64
	basis atomic.Pointer[Basis]

	axes              Axes
	velocity          mgl64.Vec3
	lastKnownPosition mgl64.Vec3
	jump              jumpSequencer
	ticks             uint64
}

// State is a read-only copy of a controller's per-actor state.
type State struct {
	ID            int
	Tick          uint64
	Position      mgl64.Vec3
	Velocity      mgl64.Vec3
	Yaw           float64
	Pitch         float64
	Roll          float64
	Basis         Basis
	Axes          Axes
	Jump          JumpState
	JumpRequested bool
	SinceGrounded float64
}

func New(mover Mover, position PositionSource, opts ...Option) (*Controller, error) {
	if mover == nil {
		return nil, ErrNilMover
	}
	if position == nil {
		return nil, ErrNilPosition
	}
	c := &Controller{
		mover:    mover,
		position: position,
		params:   DefaultParams(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.params.PhysicsStep <= 0 {
		return nil, fmt.Errorf("controller: physics step %v must be positive", c.params.PhysicsStep)
	}

	c.lastKnownPosition = position.WorldPosition()
	c.mover.SetGravity(gravityVector(c.params.Gravity))
	c.mover.SetJumpSpeed(c.params.JumpSpeed)
	c.updateLook()
	return c, nil
}

// Step advances the controller by one fixed simulation tick: the movement
// integrator runs first, then the jump sequencer. A dt that is not a positive
// finite number is rejected without touching any state.
func (c *Controller) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidStep, dt)
	}
	// the position sample spans the real dt; only the integration budget is clamped
	budget := dt
	if c.params.MaxStep > 0 && dt > c.params.MaxStep {
		slog.Debug("Clamping oversized step", "actor", c.id, "dt", dt, "max", c.params.MaxStep)
		budget = c.params.MaxStep
	}

	c.ticks++
	c.move(dt, budget)
	c.sequenceJump(budget)
	return nil
}

// Resync forgets the previous position sample. Call it after the actor is
// teleported so the jump is not read as velocity.
func (c *Controller) Resync() {
	c.lastKnownPosition = c.position.WorldPosition()
	c.velocity = mgl64.Vec3{}
	c.mover.SetWalkDirection(mgl64.Vec3{})
}

func (c *Controller) SetAxes(a Axes) {
	c.axes = Axes{
		Forward:  clampAxis(a.Forward),
		Backward: clampAxis(a.Backward),
		Left:     clampAxis(a.Left),
		Right:    clampAxis(a.Right),
	}
}

func (c *Controller) SetForward(v float64)  { c.axes.Forward = clampAxis(v) }
func (c *Controller) SetBackward(v float64) { c.axes.Backward = clampAxis(v) }
func (c *Controller) SetLeft(v float64)     { c.axes.Left = clampAxis(v) }
func (c *Controller) SetRight(v float64)    { c.axes.Right = clampAxis(v) }

// SetJump records the jump input level. Only a rising edge arms a request.
func (c *Controller) SetJump(pressed bool) {
	c.jump.press(pressed)
}

func (c *Controller) SetMaxSpeed(v float64) {
	c.params.MaxSpeed = math.Max(0, v)
}

func (c *Controller) SetLateJumpDelay(v float64) {
	c.params.LateJumpDelay = math.Max(0, v)
}

// SetGravity changes the gravity magnitude and pushes it to the mover at once.
func (c *Controller) SetGravity(v float64) {
	c.params.Gravity = v
	c.mover.SetGravity(gravityVector(v))
}

func (c *Controller) SetJumpSpeed(v float64) {
	c.params.JumpSpeed = v
	c.mover.SetJumpSpeed(v)
}

func (c *Controller) ID() int                    { return c.id }
func (c *Controller) Params() Params             { return c.params }
func (c *Controller) Axes() Axes                 { return c.axes }
func (c *Controller) Velocity() mgl64.Vec3       { return c.velocity }
func (c *Controller) Yaw() float64               { return c.yaw }
func (c *Controller) Pitch() float64             { return c.pitch }
func (c *Controller) Roll() float64              { return c.roll }
func (c *Controller) JumpState() JumpState       { return c.jump.state }
func (c *Controller) JumpRequested() bool        { return c.jump.requested }
func (c *Controller) TimeSinceGrounded() float64 { return c.jump.sinceGrounded }

func (c *Controller) Snapshot() State {
	return State{
		ID:            c.id,
		Tick:          c.ticks,
		Position:      c.lastKnownPosition,
		Velocity:      c.velocity,
		Yaw:           c.yaw,
		Pitch:         c.pitch,
		Roll:          c.roll,
		Basis:         c.Basis(),
		Axes:          c.axes,
		Jump:          c.jump.state,
		JumpRequested: c.jump.requested,
		SinceGrounded: c.jump.sinceGrounded,
	}
}

func (c *Controller) publish(name string, evt any) {
	if c.events == nil {
		return
	}
	c.events.Publish(name, evt)
}

func (c *Controller) sequenceJump(dt float64) {
	prev := c.jump.advance(c.mover.CanJump(), dt)
	switch {
	case prev == Grounded && c.jump.state == CoyoteWindow:
		c.publish(event.EventActorLeftGround, event.LeftGroundEvent{
			ActorID:  c.id,
			Tick:     c.ticks,
			Position: c.lastKnownPosition,
		})
	case prev != Grounded && c.jump.state == Grounded:
		c.publish(event.EventActorLanded, event.LandEvent{
			ActorID:  c.id,
			Tick:     c.ticks,
			Position: c.lastKnownPosition,
			Velocity: c.velocity,
		})
	}

	since := c.jump.sinceGrounded
	if !c.jump.consume(c.params.LateJumpDelay) {
		return
	}
	c.mover.Jump()
	slog.Debug("Jump honored", "actor", c.id, "since_grounded", since)
	c.publish(event.EventActorJumped, event.JumpEvent{
		ActorID:       c.id,
		Tick:          c.ticks,
		Position:      c.lastKnownPosition,
		SinceGrounded: since,
	})
}

func gravityVector(magnitude float64) mgl64.Vec3 {
	return mgl64.Vec3{0, -magnitude, 0}
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
