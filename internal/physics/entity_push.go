package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	entityPushMaxPerEntity = 0.08
	entityPushMaxPerTick   = 0.12
	entityPushStrength     = 0.7
)

type Collider struct {
	Position mgl64.Vec3
	Shape    Shape
}

// ApplyEntityPush separates pos from overlapping colliders on the horizontal
// plane. The result is swept through blockStore so a push never ends inside
// a wall.
func ApplyEntityPush(pos mgl64.Vec3, shape Shape, blockStore BlockStore, entities []Collider) mgl64.Vec3 {
	if len(entities) == 0 {
		return pos
	}

	var push mgl64.Vec2
	self := shape.AABB(pos)

	for _, entity := range entities {
		es := entity.Shape
		if es.Width <= 0 {
			es.Width = DefaultWidth
		}
		if es.Height <= 0 {
			es.Height = DefaultHeight
		}

		other := es.AABB(entity.Position)
		if self.Max.Y() <= other.Min.Y() || self.Min.Y() >= other.Max.Y() {
			continue
		}

		d := mgl64.Vec2{pos.X() - entity.Position.X(), pos.Z() - entity.Position.Z()}
		minDist := shape.halfWidth() + es.halfWidth()
		if d.LenSqr() >= minDist*minDist {
			continue
		}

		dist := d.Len()
		dir := mgl64.Vec2{1, 0}
		if dist >= CollisionAxisTolerance {
			dir = d.Mul(1 / dist)
		}

		overlap := minDist - dist
		if overlap <= 0 {
			continue
		}

		mag := math.Min(overlap*entityPushStrength, entityPushMaxPerEntity)
		push = push.Add(dir.Mul(mag))
	}

	length := push.Len()
	if length <= CollisionAxisTolerance {
		return pos
	}
	if length > entityPushMaxPerTick {
		push = push.Mul(entityPushMaxPerTick / length)
	}

	newPos, _ := ResolveMovement(pos, mgl64.Vec3{push.X(), 0, push.Y()}, shape, blockStore)
	return newPos
}

// ApplyPush moves c out of the given neighbours.
func (c *Character) ApplyPush(neighbors []*Character) {
	if len(neighbors) == 0 {
		return
	}
	colliders := make([]Collider, 0, len(neighbors))
	for _, n := range neighbors {
		if n == nil || n == c {
			continue
		}
		colliders = append(colliders, Collider{Position: n.position, Shape: n.shape})
	}
	c.position = ApplyEntityPush(c.position, c.shape, c.store, colliders)
}
