package scene

import (
	"log/slog"

	"github.com/Versifine/stride/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Fixed-step systems, in the order they are registered.

func (s *Scene) stepControllers(e *ecs.ECS) {
	s.tick++
	Actor.Each(e.World, func(entry *donburi.Entry) {
		a := Actor.Get(entry)
		if err := a.Controller.Step(s.step); err != nil {
			slog.Warn("Controller step failed", "actor", a.ID, "error", err)
		}
	})
}

func (s *Scene) pushActors(e *ecs.ECS) {
	Actor.Each(e.World, func(entry *donburi.Entry) {
		a := Actor.Get(entry)
		a.Character.ApplyPush(s.broadphase.Neighbors(a.Character))
		s.broadphase.Sync(a.Character)
	})
}

func (s *Scene) tickCharacters(e *ecs.ECS) {
	Actor.Each(e.World, func(entry *donburi.Entry) {
		a := Actor.Get(entry)
		a.Character.Tick(s.step)
		s.broadphase.Sync(a.Character)
	})
}

func (s *Scene) publishState(e *ecs.ECS) {
	s.state.SetTick(s.tick)
	Actor.Each(e.World, func(entry *donburi.Entry) {
		s.publishActor(Actor.Get(entry))
	})
}

func (s *Scene) publishActor(a *ActorData) {
	ctl := a.Controller
	v := ctl.Velocity()
	s.state.UpdateActor(world.Actor{
		ID:        a.ID,
		Position:  a.Character.WorldPosition(),
		Velocity:  mgl64.Vec3{v.X(), a.Character.VerticalSpeed(), v.Z()},
		Yaw:       ctl.Yaw(),
		Pitch:     ctl.Pitch(),
		Roll:      ctl.Roll(),
		OnGround:  a.Character.OnGround(),
		JumpState: ctl.JumpState().String(),
	})
}
