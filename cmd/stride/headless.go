package main

import (
	"math"
	"time"

	"github.com/Versifine/stride/internal/controller"
	"github.com/Versifine/stride/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
)

type headlessResult struct {
	Ticks    uint64
	Speed    float64
	Position mgl64.Vec3
	Stats    scene.Stats
}

// runHeadless holds full forward input on the player for d of simulated time.
func runHeadless(sc *scene.Scene, tickRate int, d time.Duration) headlessResult {
	sc.SetPlayerAxes(controller.Axes{Forward: 1})
	ticks := int(math.Round(d.Seconds() * float64(tickRate)))
	sc.RunTicks(ticks)

	p := sc.Player()
	return headlessResult{
		Ticks:    sc.Tick(),
		Speed:    mgl64.Vec2{p.Velocity.X(), p.Velocity.Z()}.Len(),
		Position: p.Position,
		Stats:    sc.Stats(),
	}
}
