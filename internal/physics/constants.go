package physics

const (
	DefaultWidth        = 1.0
	DefaultHeight       = 1.8
	DefaultMaxFallSpeed = 55.0

	GroundProbeDistance    = 0.001
	CollisionAxisTolerance = 1e-9
)
