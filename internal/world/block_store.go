package world

import (
	"errors"
	"sync"
)

const (
	ChunkWidth       = 16
	SectionHeight    = 16
	BlocksPerSection = ChunkWidth * ChunkWidth * SectionHeight
)

var ErrInvalidBounds = errors.New("world: invalid vertical bounds")

type ChunkPos struct {
	X int32
	Z int32
}

// chunkSection is nil until the first solid cell is written into it.
type chunkSection struct {
	solid []bool
	count int
}

type chunk struct {
	sections []chunkSection
}

// Level is a voxel store of unit cells. Cell (x,y,z) spans [x,x+1) on each
// axis. It is safe for concurrent use.
type Level struct {
	mu     sync.RWMutex
	bounds VerticalBounds
	chunks map[ChunkPos]*chunk
	solid  int
}

func NewLevel() *Level {
	l, _ := NewLevelWithBounds(DefaultVerticalBounds())
	return l
}

func NewLevelWithBounds(bounds VerticalBounds) (*Level, error) {
	if bounds.Height <= 0 {
		return nil, ErrInvalidBounds
	}
	return &Level{
		bounds: bounds,
		chunks: make(map[ChunkPos]*chunk),
	}, nil
}

func (l *Level) VerticalBounds() VerticalBounds {
	return l.bounds
}

// SetSolid writes one cell. It reports false when y is outside the level's
// vertical bounds.
func (l *Level) SetSolid(x, y, z int, solid bool) bool {
	if !l.bounds.Contains(y) {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setLocked(x, y, z, solid)
	return true
}

func (l *Level) setLocked(x, y, z int, solid bool) {
	pos, sectionIndex, blockIndex := l.locate(x, y, z)
	c, ok := l.chunks[pos]
	if !ok {
		if !solid {
			return
		}
		c = &chunk{sections: make([]chunkSection, l.bounds.sectionCount())}
		l.chunks[pos] = c
	}

	section := &c.sections[sectionIndex]
	if section.solid == nil {
		if !solid {
			return
		}
		section.solid = make([]bool, BlocksPerSection)
	}
	if section.solid[blockIndex] == solid {
		return
	}
	section.solid[blockIndex] = solid
	if solid {
		section.count++
		l.solid++
	} else {
		section.count--
		l.solid--
	}
}

func (l *Level) IsSolid(x, y, z int) bool {
	if !l.bounds.Contains(y) {
		return false
	}
	pos, sectionIndex, blockIndex := l.locate(x, y, z)

	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.chunks[pos]
	if !ok {
		return false
	}
	section := c.sections[sectionIndex]
	if section.solid == nil {
		return false
	}
	return section.solid[blockIndex]
}

// Fill marks every cell of b solid and returns how many cells were inside
// the vertical bounds.
func (l *Level) Fill(b Box) int {
	return l.apply(b, true)
}

// Clear empties every cell of b.
func (l *Level) Clear(b Box) int {
	return l.apply(b, false)
}

func (l *Level) apply(b Box, solid bool) int {
	b = b.normalized()
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for y := b.Min[1]; y < b.Max[1]; y++ {
		if !l.bounds.Contains(y) {
			continue
		}
		for x := b.Min[0]; x < b.Max[0]; x++ {
			for z := b.Min[2]; z < b.Max[2]; z++ {
				l.setLocked(x, y, z, solid)
				n++
			}
		}
	}
	return n
}

// Bounds returns the smallest box holding every solid cell. ok is false for
// an empty level.
func (l *Level) Bounds() (b Box, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for pos, c := range l.chunks {
		for si, section := range c.sections {
			if section.count == 0 {
				continue
			}
			for i, solid := range section.solid {
				if !solid {
					continue
				}
				x := int(pos.X)*ChunkWidth + i%ChunkWidth
				z := int(pos.Z)*ChunkWidth + (i/ChunkWidth)%ChunkWidth
				y := l.bounds.MinY + si*SectionHeight + i/(ChunkWidth*ChunkWidth)
				cell := Box{Min: [3]int{x, y, z}, Max: [3]int{x + 1, y + 1, z + 1}}
				if !ok {
					b, ok = cell, true
					continue
				}
				b = b.union(cell)
			}
		}
	}
	return b, ok
}

// SurfaceY returns the row just above the highest solid cell in column
// (x,z).
func (l *Level) SurfaceY(x, z int) (int, bool) {
	for y := l.bounds.MaxY(); y >= l.bounds.MinY; y-- {
		if l.IsSolid(x, y, z) {
			return y + 1, true
		}
	}
	return 0, false
}

func (l *Level) SolidCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.solid
}

func (l *Level) ChunkCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chunks)
}

func (l *Level) locate(x, y, z int) (ChunkPos, int, int) {
	pos := ChunkPos{X: int32(floorDiv16(x)), Z: int32(floorDiv16(z))}
	rel := y - l.bounds.MinY
	sectionIndex := rel / SectionHeight
	localY := rel % SectionHeight
	blockIndex := localY*ChunkWidth*ChunkWidth + floorMod16(z)*ChunkWidth + floorMod16(x)
	return pos, sectionIndex, blockIndex
}

func floorDiv16(v int) int {
	q := v / 16
	if v < 0 && v%16 != 0 {
		q--
	}
	return q
}

func floorMod16(v int) int {
	m := v % 16
	if m < 0 {
		m += 16
	}
	return m
}
