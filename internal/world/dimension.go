package world

const (
	DefaultMinY   = -16
	DefaultHeight = 64
)

// VerticalBounds is the band of cell rows a Level can hold.
type VerticalBounds struct {
	MinY   int
	Height int
}

func DefaultVerticalBounds() VerticalBounds {
	return VerticalBounds{MinY: DefaultMinY, Height: DefaultHeight}
}

func (b VerticalBounds) MaxY() int {
	return b.MinY + b.Height - 1
}

func (b VerticalBounds) Contains(y int) bool {
	return y >= b.MinY && y <= b.MaxY()
}

func (b VerticalBounds) sectionCount() int {
	return (b.Height + SectionHeight - 1) / SectionHeight
}
