package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	axisX = 0
	axisY = 1
	axisZ = 2
)

// resolution order: vertical first so a landing actor slides along the floor
var resolveOrder = [3]int{axisY, axisX, axisZ}

type BlockStore interface {
	IsSolid(x, y, z int) bool
}

// Shape is the box that stands in for an actor's capsule. The box is centred
// on the position horizontally and rises Height above it.
type Shape struct {
	Width  float64
	Height float64
}

func DefaultShape() Shape {
	return Shape{Width: DefaultWidth, Height: DefaultHeight}
}

func (s Shape) halfWidth() float64 {
	return s.Width / 2.0
}

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (s Shape) AABB(pos mgl64.Vec3) AABB {
	hw := s.halfWidth()
	return AABB{
		Min: mgl64.Vec3{pos.X() - hw, pos.Y(), pos.Z() - hw},
		Max: mgl64.Vec3{pos.X() + hw, pos.Y() + s.Height, pos.Z() + hw},
	}
}

func (a AABB) Intersects(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Min[i] >= b.Max[i] || a.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

func (a AABB) offset(axis int, d float64) AABB {
	a.Min[axis] += d
	a.Max[axis] += d
	return a
}

func CollidesWithBlock(box AABB, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}

	minX, maxX := floorForMin(box.Min.X()), floorForMax(box.Max.X())
	minY, maxY := floorForMin(box.Min.Y()), floorForMax(box.Max.Y())
	minZ, maxZ := floorForMin(box.Min.Z()), floorForMax(box.Max.Z())

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if !blockStore.IsSolid(x, y, z) {
					continue
				}
				block := AABB{
					Min: mgl64.Vec3{float64(x), float64(y), float64(z)},
					Max: mgl64.Vec3{float64(x + 1), float64(y + 1), float64(z + 1)},
				}
				if box.Intersects(block) {
					return true
				}
			}
		}
	}

	return false
}

// ResolveMovement sweeps shape from pos by delta one axis at a time (Y, X, Z).
// It returns the final position and the displacement actually applied; an
// axis that hit a solid cell is zeroed in the returned displacement.
func ResolveMovement(pos, delta mgl64.Vec3, shape Shape, blockStore BlockStore) (mgl64.Vec3, mgl64.Vec3) {
	newPos := pos
	applied := delta

	for _, axis := range resolveOrder {
		allowed := resolveAxis(shape.AABB(newPos), axis, delta[axis], blockStore)
		newPos[axis] += allowed
		if !nearlyEqual(allowed, delta[axis]) {
			applied[axis] = 0
		}
	}

	return newPos, applied
}

// resolveAxis returns how far box may travel along axis, at most delta.
func resolveAxis(box AABB, axis int, delta float64, blockStore BlockStore) float64 {
	if blockStore == nil || nearlyZero(delta) {
		return delta
	}

	u, v := (axis+1)%3, (axis+2)%3
	minU, maxU := floorForMin(box.Min[u]), floorForMax(box.Max[u])
	minV, maxV := floorForMin(box.Min[v]), floorForMax(box.Max[v])

	allowed := delta
	var cell [3]int
	solid := func(i, j, k int) bool {
		cell[axis], cell[u], cell[v] = i, j, k
		return blockStore.IsSolid(cell[0], cell[1], cell[2])
	}

	if delta > 0 {
		start := floorForMax(box.Max[axis]) + 1
		end := int(math.Floor(box.Max[axis] + delta))
		for i := start; i <= end; i++ {
			for j := minU; j <= maxU; j++ {
				for k := minV; k <= maxV; k++ {
					if !solid(i, j, k) {
						continue
					}
					if candidate := float64(i) - box.Max[axis]; candidate < allowed {
						allowed = candidate
					}
				}
			}
		}
		return math.Max(allowed, 0)
	}

	start := floorForMin(box.Min[axis]) - 1
	end := int(math.Floor(box.Min[axis] + delta))
	for i := start; i >= end; i-- {
		for j := minU; j <= maxU; j++ {
			for k := minV; k <= maxV; k++ {
				if !solid(i, j, k) {
					continue
				}
				if candidate := float64(i+1) - box.Min[axis]; candidate > allowed {
					allowed = candidate
				}
			}
		}
	}
	return math.Min(allowed, 0)
}

func isStandingOnSolidBlock(pos mgl64.Vec3, shape Shape, blockStore BlockStore) bool {
	if blockStore == nil {
		return false
	}
	probe := shape.AABB(pos).offset(axisY, -GroundProbeDistance)
	return CollidesWithBlock(probe, blockStore)
}

func floorForMin(v float64) int {
	return int(math.Floor(v + CollisionAxisTolerance))
}

func floorForMax(v float64) int {
	return int(math.Floor(v - CollisionAxisTolerance))
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
