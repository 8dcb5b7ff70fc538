// Package scene hosts actors in a donburi world and drives them at a fixed
// tick rate from variable-length frames.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/controller"
	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

const (
	PlayerID = 0

	broadphaseMargin   = 16
	broadphaseCellSize = 2
	accumulatorEpsilon = 1e-9
)

var (
	ErrInvalidFrame   = errors.New("scene: frame time must be a finite non-negative number")
	ErrUnknownActor   = errors.New("scene: unknown actor")
	ErrUnknownTunable = errors.New("scene: unknown tunable")
	ErrDespawnPlayer  = errors.New("scene: the player cannot be despawned")
)

type Option func(*Scene)

// WithLevel uses an existing level instead of building one from config.
func WithLevel(l *world.Level) Option {
	return func(s *Scene) { s.level = l }
}

func WithEvents(bus *event.Bus) Option {
	return func(s *Scene) { s.events = bus }
}

func WithWorldState(ws *world.WorldState) Option {
	return func(s *Scene) { s.state = ws }
}

// Stats counts jump-state events seen on the scene's bus.
type Stats struct {
	Jumps      int
	Landings   int
	LeftGround int
}

type Scene struct {
	mu sync.Mutex

	cfg        *config.Config
	level      *world.Level
	ecs        *ecs.ECS
	broadphase *physics.Broadphase
	events     *event.Bus
	queue      eventQueue
	state      *world.WorldState

	step        float64
	maxSubSteps int
	sensitivity float64
	accumulator float64
	tick        uint64

	player *donburi.Entry
	byID   map[int]*donburi.Entry
	stats  Stats
}

func New(cfg *config.Config, opts ...Option) (*Scene, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scene{
		cfg:         cfg,
		step:        cfg.World.PhysicsStep(),
		maxSubSteps: cfg.World.MaxSubSteps,
		sensitivity: cfg.Controller.MouseSensitivity,
		byID:        make(map[int]*donburi.Entry),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.level == nil {
		level, err := world.Build(Layout(cfg.World.Level))
		if err != nil {
			return nil, fmt.Errorf("build level: %w", err)
		}
		s.level = level
	}
	if s.events == nil {
		s.events = event.NewBus()
	}
	if s.state == nil {
		s.state = world.NewWorldState()
	}
	s.subscribe()

	s.broadphase = newBroadphase(s.level)
	s.ecs = ecs.NewECS(donburi.NewWorld())
	s.ecs.AddSystem(s.stepControllers)
	s.ecs.AddSystem(s.pushActors)
	s.ecs.AddSystem(s.tickCharacters)
	s.ecs.AddSystem(s.publishState)

	spawns := s.spawnPoints()
	for id, pos := range spawns {
		if err := s.spawn(id, pos); err != nil {
			return nil, err
		}
	}
	s.state.SetPlayer(PlayerID)
	s.publishState(s.ecs)

	slog.Info("Scene ready", "actors", len(spawns), "tick_rate", cfg.World.TickRate, "solid_cells", s.level.SolidCount())
	return s, nil
}

func newBroadphase(level *world.Level) *physics.Broadphase {
	b, ok := level.Bounds()
	if !ok {
		b = world.Box{Min: [3]int{-64, 0, -64}, Max: [3]int{64, 1, 64}}
	}
	return physics.NewBroadphase(
		b.Min[0]-broadphaseMargin, b.Min[2]-broadphaseMargin,
		b.Max[0]+broadphaseMargin, b.Max[2]+broadphaseMargin,
		broadphaseCellSize,
	)
}

// spawnPoints returns the player's spawn followed by one per idle actor.
// Configured points are used first; the rest are scattered over the level
// with a generator seeded from the level seed.
func (s *Scene) spawnPoints() []mgl64.Vec3 {
	wc := s.cfg.World
	total := wc.Actors + 1
	points := make([]mgl64.Vec3, 0, total)
	for _, p := range wc.SpawnPoints {
		if len(points) == total {
			break
		}
		points = append(points, mgl64.Vec3{p[0], p[1], p[2]})
	}
	if len(points) == 0 {
		points = append(points, s.level.Spawn(0, 0, wc.Level.FloorY))
	}

	scatter := max(wc.Level.Scatter, 1)
	rng := rand.New(rand.NewSource(wc.Level.Seed + 1))
	for len(points) < total {
		x := rng.Intn(2*scatter+1) - scatter
		z := rng.Intn(2*scatter+1) - scatter
		points = append(points, s.level.Spawn(x, z, wc.Level.FloorY))
	}
	return points
}

func (s *Scene) spawn(id int, pos mgl64.Vec3) error {
	ch := physics.NewCharacter(s.level, pos, CharacterOptions(s.cfg)...)
	ctl, err := controller.New(ch, ch,
		controller.WithID(id),
		controller.WithParams(ControllerParams(s.cfg)),
		controller.WithEvents(&s.queue),
	)
	if err != nil {
		return fmt.Errorf("spawn actor %d: %w", id, err)
	}

	w := s.ecs.World
	var entity donburi.Entity
	if id == PlayerID {
		entity = w.Create(Actor, Intent, Player)
	} else {
		entity = w.Create(Actor, Intent)
	}
	entry := w.Entry(entity)
	Actor.SetValue(entry, ActorData{ID: id, Controller: ctl, Character: ch})
	Intent.SetValue(entry, IntentData{})

	s.broadphase.Add(ch)
	s.byID[id] = entry
	if id == PlayerID {
		s.player = entry
	}
	return nil
}

func (s *Scene) subscribe() {
	s.events.Subscribe(event.EventActorJumped, func(raw any) {
		if evt, ok := raw.(event.JumpEvent); ok {
			s.mu.Lock()
			s.stats.Jumps++
			s.mu.Unlock()
			slog.Debug("Actor jumped", "actor", evt.ActorID, "tick", evt.Tick, "since_grounded", evt.SinceGrounded)
		}
	})
	s.events.Subscribe(event.EventActorLanded, func(raw any) {
		if evt, ok := raw.(event.LandEvent); ok {
			s.mu.Lock()
			s.stats.Landings++
			s.mu.Unlock()
			slog.Debug("Actor landed", "actor", evt.ActorID, "tick", evt.Tick)
		}
	})
	s.events.Subscribe(event.EventActorLeftGround, func(raw any) {
		if _, ok := raw.(event.LeftGroundEvent); ok {
			s.mu.Lock()
			s.stats.LeftGround++
			s.mu.Unlock()
		}
	})
}

// Update applies pending input, then runs as many fixed steps as frameDt
// covers, at most max_sub_steps. It returns the number of steps run. Events
// raised by the steps are published after the scene is unlocked.
func (s *Scene) Update(frameDt float64) (int, error) {
	if math.IsNaN(frameDt) || math.IsInf(frameDt, 0) || frameDt < 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidFrame, frameDt)
	}

	s.mu.Lock()
	steps := s.advance(frameDt)
	queued := s.queue.drain()
	s.mu.Unlock()

	flush(s.events, queued)
	return steps, nil
}

func (s *Scene) advance(frameDt float64) int {
	s.applyIntents()

	s.accumulator += frameDt
	steps := 0
	for s.accumulator+accumulatorEpsilon >= s.step && steps < s.maxSubSteps {
		s.ecs.Update()
		s.accumulator -= s.step
		steps++
	}
	if s.accumulator+accumulatorEpsilon >= s.step {
		dropped := math.Floor((s.accumulator + accumulatorEpsilon) / s.step)
		slog.Debug("Scene fell behind, dropping steps", "dropped", dropped)
		s.accumulator -= dropped * s.step
	}
	if s.accumulator < 0 {
		s.accumulator = 0
	}
	return steps
}

// RunTicks runs n fixed steps regardless of wall time.
func (s *Scene) RunTicks(n int) {
	s.mu.Lock()
	for i := 0; i < n; i++ {
		s.applyIntents()
		s.ecs.Update()
	}
	queued := s.queue.drain()
	s.mu.Unlock()

	flush(s.events, queued)
}

func (s *Scene) applyIntents() {
	Intent.Each(s.ecs.World, func(e *donburi.Entry) {
		in := Intent.Get(e)
		a := Actor.Get(e)
		a.Controller.SetAxes(in.Axes)
		a.Controller.SetJump(in.Jump)
		a.Controller.Rotate(in.LookYaw, in.LookPitch, in.LookRoll)
		in.LookYaw, in.LookPitch, in.LookRoll = 0, 0, 0
	})
}

func (s *Scene) playerIntent() *IntentData {
	return Intent.Get(s.player)
}

func (s *Scene) SetPlayerAxes(a controller.Axes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerIntent().Axes = a
}

func (s *Scene) SetPlayerJump(pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerIntent().Jump = pressed
}

// Look queues a pointer movement, scaled by the mouse sensitivity.
func (s *Scene) Look(dx, dy float64) {
	s.Rotate(dx*s.sensitivity, dy*s.sensitivity, 0)
}

// Rotate queues a look change in degrees for the player.
func (s *Scene) Rotate(dYaw, dPitch, dRoll float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.playerIntent()
	in.LookYaw += dYaw
	in.LookPitch += dPitch
	in.LookRoll += dRoll
}

// Teleport moves an actor without sweeping and drops its motion.
func (s *Scene) Teleport(id int, pos mgl64.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownActor, id)
	}
	a := Actor.Get(entry)
	a.Character.Teleport(pos)
	a.Controller.Resync()
	s.broadphase.Sync(a.Character)
	s.publishActor(a)
	return nil
}

// Despawn removes an idle actor from the world, the broadphase and the
// published state.
func (s *Scene) Despawn(id int) error {
	if id == PlayerID {
		return ErrDespawnPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownActor, id)
	}
	a := Actor.Get(entry)
	s.broadphase.Remove(a.Character)
	s.ecs.World.Remove(entry.Entity())
	delete(s.byID, id)
	s.state.RemoveActors([]int{id})
	slog.Info("Actor despawned", "actor", id, "remaining", len(s.byID))
	return nil
}

// Tune changes one of the player's tunables: max_speed, late_jump, gravity
// or jump_speed.
func (s *Scene) Tune(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("tune %s: value must be finite", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ctl := Actor.Get(s.player).Controller
	switch name {
	case "max_speed":
		ctl.SetMaxSpeed(v)
	case "late_jump", "late_jump_delay":
		ctl.SetLateJumpDelay(v)
	case "gravity":
		ctl.SetGravity(v)
	case "jump_speed":
		ctl.SetJumpSpeed(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTunable, name)
	}
	slog.Info("Tunable changed", "name", name, "value", v)
	return nil
}

func (s *Scene) Player() controller.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Actor.Get(s.player).Controller.Snapshot()
}

// Actor returns the controller state of one actor.
func (s *Scene) Actor(id int) (controller.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byID[id]
	if !ok {
		return controller.State{}, false
	}
	return Actor.Get(entry).Controller.Snapshot(), true
}

// Actors returns every actor's controller state ordered by ID.
func (s *Scene) Actors() []controller.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]controller.State, 0, len(s.byID))
	for _, entry := range s.byID {
		out = append(out, Actor.Get(entry).Controller.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Scene) PlayerOnGround() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Actor.Get(s.player).Character.OnGround()
}

func (s *Scene) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Snapshot returns the last published world state. It does not take the
// scene lock.
func (s *Scene) Snapshot() world.Snapshot {
	return s.state.GetState()
}

func (s *Scene) Level() *world.Level { return s.level }
func (s *Scene) Step() float64       { return s.step }

// Events is the bus jump-state events are published on. Handlers run on the
// goroutine that called Update or RunTicks, after the scene is unlocked.
func (s *Scene) Events() *event.Bus { return s.events }
