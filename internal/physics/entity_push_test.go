package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestApplyEntityPush_SeparatesOverlappingActors(t *testing.T) {
	store := newMockBlockStore()
	addFloor(store, -3, 3, -3, 3, -1)

	pos := ApplyEntityPush(mgl64.Vec3{0, 0, 0}, DefaultShape(), store, []Collider{
		{Position: mgl64.Vec3{0.5, 0, 0}, Shape: DefaultShape()},
	})

	if pos.X() >= 0 {
		t.Fatalf("position.x = %v, want pushed to negative x", pos.X())
	}
	approxEqual(t, pos.X(), -0.08, 1e-9, "position.x")
	approxEqual(t, pos.Y(), 0, 0, "position.y")
	approxEqual(t, pos.Z(), 0, 0, "position.z")
}

func TestApplyEntityPush_CappedPerTick(t *testing.T) {
	colliders := []Collider{
		{Position: mgl64.Vec3{0.2, 0, 0}},
		{Position: mgl64.Vec3{0.2, 0, 0.01}},
		{Position: mgl64.Vec3{0.2, 0, -0.01}},
	}

	pos := ApplyEntityPush(mgl64.Vec3{}, DefaultShape(), nil, colliders)

	if l := (mgl64.Vec2{pos.X(), pos.Z()}).Len(); l > entityPushMaxPerTick+1e-12 {
		t.Fatalf("push length = %v, want <= %v", l, entityPushMaxPerTick)
	}
}

func TestApplyEntityPush_IgnoresVerticallySeparated(t *testing.T) {
	pos := ApplyEntityPush(mgl64.Vec3{}, DefaultShape(), nil, []Collider{
		{Position: mgl64.Vec3{0.1, 2, 0}, Shape: DefaultShape()},
	})
	if pos != (mgl64.Vec3{}) {
		t.Fatalf("position = %v, want unchanged", pos)
	}
}

func TestApplyEntityPush_WallBlocksPush(t *testing.T) {
	store := newMockBlockStore()
	store.setSolid(-1, 0, 0)
	store.setSolid(-1, 1, 0)
	store.setSolid(-1, 0, -1)
	store.setSolid(-1, 1, -1)

	// 左侧紧贴墙面
	pos := ApplyEntityPush(mgl64.Vec3{0.5, 0, 0}, DefaultShape(), store, []Collider{
		{Position: mgl64.Vec3{0.9, 0, 0}, Shape: DefaultShape()},
	})

	approxEqual(t, pos.X(), 0.5, 1e-9, "position.x")
}

func TestApplyEntityPush_CoincidentActorsPushedAlongX(t *testing.T) {
	pos := ApplyEntityPush(mgl64.Vec3{}, DefaultShape(), nil, []Collider{
		{Position: mgl64.Vec3{}, Shape: DefaultShape()},
	})
	approxEqual(t, pos.X(), entityPushMaxPerEntity, 1e-12, "position.x")
}

func TestCharacterApplyPush_SkipsSelf(t *testing.T) {
	a := NewCharacter(nil, mgl64.Vec3{})
	a.ApplyPush([]*Character{a, nil})
	if a.WorldPosition() != (mgl64.Vec3{}) {
		t.Fatalf("self push moved character to %v", a.WorldPosition())
	}
}
