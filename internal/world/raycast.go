package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hit is the first solid cell met by a ray.
type Hit struct {
	Cell     [3]int
	Distance float64
	// Face is the outward normal of the face the ray entered through; zero
	// when the ray starts inside the cell.
	Face [3]int
}

// Raycast walks the cells crossed by the ray from origin along dir (grid DDA)
// and returns the first solid one within maxDist.
func (l *Level) Raycast(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	if dir.Len() < 1e-9 || !(maxDist >= 0) {
		return Hit{}, false
	}
	dir = dir.Normalize()

	cell := [3]int{
		int(math.Floor(origin.X())),
		int(math.Floor(origin.Y())),
		int(math.Floor(origin.Z())),
	}
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		step[i], tMax[i], tDelta[i] = ddaAxis(origin[i], dir[i], cell[i])
	}

	var face [3]int
	distance := 0.0
	for distance <= maxDist {
		if l.IsSolid(cell[0], cell[1], cell[2]) {
			return Hit{Cell: cell, Distance: distance, Face: face}, true
		}

		axis := 2
		switch {
		case tMax[0] <= tMax[1] && tMax[0] <= tMax[2]:
			axis = 0
		case tMax[1] <= tMax[2]:
			axis = 1
		}
		if math.IsInf(tMax[axis], 1) {
			break
		}
		cell[axis] += step[axis]
		distance = tMax[axis]
		tMax[axis] += tDelta[axis]
		face = [3]int{}
		face[axis] = -step[axis]
	}
	return Hit{}, false
}

func ddaAxis(origin, dir float64, cell int) (step int, tMax float64, tDelta float64) {
	if math.Abs(dir) < 1e-12 {
		return 0, math.Inf(1), math.Inf(1)
	}
	if dir > 0 {
		return 1, (float64(cell+1) - origin) / dir, 1 / dir
	}
	inv := -dir
	return -1, (origin - float64(cell)) / inv, 1 / inv
}
