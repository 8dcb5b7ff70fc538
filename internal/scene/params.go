package scene

import (
	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/controller"
	"github.com/Versifine/stride/internal/physics"
	"github.com/Versifine/stride/internal/world"
)

func ControllerParams(cfg *config.Config) controller.Params {
	return controller.Params{
		MaxSpeed:      cfg.Controller.MaxSpeed,
		LateJumpDelay: cfg.Controller.LateJumpDelay,
		Gravity:       cfg.Controller.Gravity,
		JumpSpeed:     cfg.Controller.JumpSpeed,
		PhysicsStep:   cfg.World.PhysicsStep(),
		MaxStep:       cfg.Controller.MaxStep,
	}
}

func CharacterOptions(cfg *config.Config) []physics.CharacterOption {
	return []physics.CharacterOption{
		physics.WithShape(physics.Shape{
			Width:  cfg.World.Capsule.Width,
			Height: cfg.World.Capsule.Height,
		}),
		physics.WithMaxFallSpeed(cfg.World.MaxFallSpeed),
	}
}

func Layout(lc config.LevelConfig) world.Layout {
	boxes := make([]world.Box, 0, len(lc.Boxes))
	for _, b := range lc.Boxes {
		boxes = append(boxes, world.Box{Min: b.Min, Max: b.Max})
	}
	return world.Layout{
		FloorTiles:   lc.FloorTiles,
		TileSize:     lc.TileSize,
		FloorY:       lc.FloorY,
		Boxes:        boxes,
		RandomBoxes:  lc.RandomBoxes,
		RandomBoxMin: lc.RandomBoxMin,
		RandomBoxMax: lc.RandomBoxMax,
		Scatter:      lc.Scatter,
		Seed:         lc.Seed,
	}
}
