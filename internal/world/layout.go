package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrInvalidLayout = errors.New("world: invalid layout")

// Box is a half-open range of cells: Min inclusive, Max exclusive.
type Box struct {
	Min [3]int
	Max [3]int
}

func (b Box) normalized() Box {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			b.Min[i], b.Max[i] = b.Max[i], b.Min[i]
		}
	}
	return b
}

func (b Box) union(o Box) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], o.Min[i])
		b.Max[i] = max(b.Max[i], o.Max[i])
	}
	return b
}

func (b Box) Size() [3]int {
	b = b.normalized()
	return [3]int{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

func (b Box) Empty() bool {
	s := b.Size()
	return s[0] == 0 || s[1] == 0 || s[2] == 0
}

// Layout describes a level: a square grid of floor tiles, fixed boxes, and
// boxes scattered with a seeded generator.
type Layout struct {
	// FloorTiles per side; tiles are centred on the origin.
	FloorTiles int
	TileSize   int
	FloorY     int

	Boxes []Box

	RandomBoxes  int
	RandomBoxMin [3]int
	RandomBoxMax [3]int
	// Scatter bounds box centres to [-Scatter, Scatter] on X and Z.
	Scatter int
	Seed    int64
}

// DefaultLayout is a 5x5 grid of 8-unit floor tiles with five large
// containers scattered within 16 units of the origin.
func DefaultLayout() Layout {
	return Layout{
		FloorTiles:   5,
		TileSize:     8,
		FloorY:       -1,
		RandomBoxes:  5,
		RandomBoxMin: [3]int{3, 3, 6},
		RandomBoxMax: [3]int{3, 3, 6},
		Scatter:      16,
		Seed:         1,
	}
}

func (l Layout) Validate() error {
	if l.FloorTiles < 0 {
		return fmt.Errorf("%w: floor_tiles %d is negative", ErrInvalidLayout, l.FloorTiles)
	}
	if l.FloorTiles > 0 && l.TileSize <= 0 {
		return fmt.Errorf("%w: tile_size must be positive", ErrInvalidLayout)
	}
	if l.RandomBoxes < 0 {
		return fmt.Errorf("%w: random_boxes %d is negative", ErrInvalidLayout, l.RandomBoxes)
	}
	if l.RandomBoxes > 0 {
		for i := 0; i < 3; i++ {
			if l.RandomBoxMin[i] <= 0 || l.RandomBoxMax[i] < l.RandomBoxMin[i] {
				return fmt.Errorf("%w: random box size range %v..%v", ErrInvalidLayout, l.RandomBoxMin, l.RandomBoxMax)
			}
		}
		if l.Scatter < 0 {
			return fmt.Errorf("%w: scatter %d is negative", ErrInvalidLayout, l.Scatter)
		}
	}
	return nil
}

// FloorBox returns the area covered by the floor tiles.
func (l Layout) FloorBox() Box {
	half := l.FloorTiles * l.TileSize / 2
	return Box{
		Min: [3]int{-half, l.FloorY, -half},
		Max: [3]int{-half + l.FloorTiles*l.TileSize, l.FloorY + 1, -half + l.FloorTiles*l.TileSize},
	}
}

// Generate returns every box the layout places, floor tiles first. The same
// layout always yields the same boxes.
func (l Layout) Generate() []Box {
	boxes := make([]Box, 0, l.FloorTiles*l.FloorTiles+len(l.Boxes)+l.RandomBoxes)

	floor := l.FloorBox()
	for i := 0; i < l.FloorTiles; i++ {
		for j := 0; j < l.FloorTiles; j++ {
			x := floor.Min[0] + i*l.TileSize
			z := floor.Min[2] + j*l.TileSize
			boxes = append(boxes, Box{
				Min: [3]int{x, l.FloorY, z},
				Max: [3]int{x + l.TileSize, l.FloorY + 1, z + l.TileSize},
			})
		}
	}

	boxes = append(boxes, l.Boxes...)

	rng := rand.New(rand.NewSource(l.Seed))
	for i := 0; i < l.RandomBoxes; i++ {
		var size [3]int
		for a := 0; a < 3; a++ {
			size[a] = l.RandomBoxMin[a] + rng.Intn(l.RandomBoxMax[a]-l.RandomBoxMin[a]+1)
		}
		cx := rng.Intn(2*l.Scatter+1) - l.Scatter
		cz := rng.Intn(2*l.Scatter+1) - l.Scatter
		lo := [3]int{cx - size[0]/2, l.FloorY + 1, cz - size[2]/2}
		boxes = append(boxes, Box{
			Min: lo,
			Max: [3]int{lo[0] + size[0], lo[1] + size[1], lo[2] + size[2]},
		})
	}
	return boxes
}

// Build validates the layout and fills a new level with it.
func Build(l Layout) (*Level, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	level := NewLevel()
	for _, b := range l.Generate() {
		level.Fill(b)
	}
	return level, nil
}

// Spawn returns a standing position at the centre of cell column (x,z): on
// top of the highest solid cell, or at the floor row when the column is
// empty.
func (l *Level) Spawn(x, z int, floorY int) mgl64.Vec3 {
	y, ok := l.SurfaceY(x, z)
	if !ok {
		y = floorY + 1
	}
	return mgl64.Vec3{float64(x) + 0.5, float64(y), float64(z) + 0.5}
}
