package physics

import (
	"math"
	"sort"

	"github.com/solarlune/resolv"
)

const (
	actorTag = "actor"

	// resolv works in whole pixels; one world unit is spaceScale pixels.
	spaceScale = 16
)

// Broadphase indexes character footprints on the horizontal plane (X, Z) in
// a resolv.Space so the push step only looks at nearby actors. resolv cells
// start at zero, so footprints are stored relative to the level's minimum
// corner.
type Broadphase struct {
	space   *resolv.Space
	originX float64
	originZ float64
	objects map[*Character]*resolv.Object
	order   map[*Character]int
	next    int
}

// NewBroadphase covers the horizontal rectangle [minX,maxX) x [minZ,maxZ).
// Characters outside it are never reported as neighbours.
func NewBroadphase(minX, minZ, maxX, maxZ, cellSize int) *Broadphase {
	if cellSize <= 0 {
		cellSize = 2
	}
	w := max(maxX-minX, cellSize)
	h := max(maxZ-minZ, cellSize)
	return &Broadphase{
		space:   resolv.NewSpace(w*spaceScale, h*spaceScale, cellSize*spaceScale, cellSize*spaceScale),
		originX: float64(minX),
		originZ: float64(minZ),
		objects: make(map[*Character]*resolv.Object),
		order:   make(map[*Character]int),
	}
}

func (b *Broadphase) Add(c *Character) {
	if c == nil {
		return
	}
	if _, ok := b.objects[c]; ok {
		b.Sync(c)
		return
	}
	fx, fz := b.footprint(c)
	w := c.shape.Width * spaceScale
	obj := resolv.NewObject(fx, fz, w, w, actorTag)
	obj.SetShape(resolv.NewRectangle(0, 0, w, w))
	obj.Data = c
	b.space.Add(obj)
	b.objects[c] = obj
	b.order[c] = b.next
	b.next++
}

func (b *Broadphase) Remove(c *Character) {
	obj, ok := b.objects[c]
	if !ok {
		return
	}
	b.space.Remove(obj)
	delete(b.objects, c)
	delete(b.order, c)
}

func (b *Broadphase) Len() int {
	return len(b.objects)
}

// Sync moves c's footprint to its current position.
func (b *Broadphase) Sync(c *Character) {
	obj, ok := b.objects[c]
	if !ok {
		return
	}
	obj.X, obj.Y = b.footprint(c)
	obj.Update()
}

// Neighbors returns the other characters sharing a cell with c, in the
// order they were added.
func (b *Broadphase) Neighbors(c *Character) []*Character {
	obj, ok := b.objects[c]
	if !ok {
		return nil
	}
	check := obj.Check(0, 0, actorTag)
	if check == nil {
		return nil
	}

	seen := make(map[*Character]struct{}, len(check.Objects))
	out := make([]*Character, 0, len(check.Objects))
	for _, o := range check.Objects {
		other, ok := o.Data.(*Character)
		if !ok || other == c {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	sort.Slice(out, func(i, j int) bool { return b.order[out[i]] < b.order[out[j]] })
	return out
}

func (b *Broadphase) footprint(c *Character) (float64, float64) {
	hw := c.shape.halfWidth()
	x := (c.position.X() - hw - b.originX) * spaceScale
	z := (c.position.Z() - hw - b.originZ) * spaceScale
	if math.IsNaN(x) || math.IsNaN(z) {
		return 0, 0
	}
	return x, z
}
