package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Controller ControllerConfig `yaml:"controller"`
	World      WorldConfig      `yaml:"world"`
	Console    ConsoleConfig    `yaml:"console"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ControllerConfig struct {
	MaxSpeed         float64 `yaml:"max_speed"`
	LateJumpDelay    float64 `yaml:"late_jump_delay"`
	Gravity          float64 `yaml:"gravity"`
	JumpSpeed        float64 `yaml:"jump_speed"`
	MaxStep          float64 `yaml:"max_step"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
}

type WorldConfig struct {
	TickRate     int           `yaml:"tick_rate"`
	MaxSubSteps  int           `yaml:"max_sub_steps"`
	MaxFallSpeed float64       `yaml:"max_fall_speed"`
	Capsule      CapsuleConfig `yaml:"capsule"`
	// Actors is the number of idle actors spawned besides the player.
	Actors      int          `yaml:"actors"`
	Level       LevelConfig  `yaml:"level"`
	SpawnPoints [][3]float64 `yaml:"spawn_points,omitempty"`
}

type CapsuleConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type LevelConfig struct {
	FloorTiles   int         `yaml:"floor_tiles"`
	TileSize     int         `yaml:"tile_size"`
	FloorY       int         `yaml:"floor_y"`
	Boxes        []BoxConfig `yaml:"boxes,omitempty"`
	RandomBoxes  int         `yaml:"random_boxes"`
	RandomBoxMin [3]int      `yaml:"random_box_min"`
	RandomBoxMax [3]int      `yaml:"random_box_max"`
	Scatter      int         `yaml:"scatter"`
	Seed         int64       `yaml:"seed"`
}

type BoxConfig struct {
	Min [3]int `yaml:"min"`
	Max [3]int `yaml:"max"`
}

type ConsoleConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	YawStep      float64       `yaml:"yaw_step"`
	PitchStep    float64       `yaml:"pitch_step"`
	// MovePulse is how long a movement key stays held after a key press.
	MovePulse time.Duration `yaml:"move_pulse"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Controller: ControllerConfig{
			MaxSpeed:         10,
			LateJumpDelay:    0.10,
			Gravity:          25,
			JumpSpeed:        8,
			MaxStep:          0.25,
			MouseSensitivity: 0.22,
		},
		World: WorldConfig{
			TickRate:     60,
			MaxSubSteps:  8,
			MaxFallSpeed: 55,
			Capsule:      CapsuleConfig{Width: 1.0, Height: 1.8},
			Actors:       20,
			Level: LevelConfig{
				FloorTiles:   5,
				TileSize:     8,
				FloorY:       -1,
				RandomBoxes:  5,
				RandomBoxMin: [3]int{3, 3, 6},
				RandomBoxMax: [3]int{3, 3, 6},
				Scatter:      16,
				Seed:         1,
			},
		},
		Console: ConsoleConfig{
			TickInterval: 16 * time.Millisecond,
			YawStep:      5,
			PitchStep:    3,
			MovePulse:    150 * time.Millisecond,
		},
	}
}

// Load reads a YAML file over the defaults; keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns the first violated constraint.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return invalid("logging.format %q", c.Logging.Format)
	}

	ctl := c.Controller
	checks := []struct {
		name string
		v    float64
		ok   func(float64) bool
	}{
		{"controller.max_speed", ctl.MaxSpeed, nonNegative},
		{"controller.late_jump_delay", ctl.LateJumpDelay, nonNegative},
		{"controller.gravity", ctl.Gravity, finite},
		{"controller.jump_speed", ctl.JumpSpeed, nonNegative},
		{"controller.max_step", ctl.MaxStep, positive},
		{"controller.mouse_sensitivity", ctl.MouseSensitivity, nonNegative},
		{"world.max_fall_speed", c.World.MaxFallSpeed, positive},
		{"world.capsule.width", c.World.Capsule.Width, positive},
		{"world.capsule.height", c.World.Capsule.Height, positive},
		{"console.yaw_step", c.Console.YawStep, finite},
		{"console.pitch_step", c.Console.PitchStep, finite},
	}
	for _, chk := range checks {
		if !chk.ok(chk.v) {
			return invalid("%s = %v", chk.name, chk.v)
		}
	}

	if c.World.TickRate <= 0 {
		return invalid("world.tick_rate = %d", c.World.TickRate)
	}
	if c.World.MaxSubSteps <= 0 {
		return invalid("world.max_sub_steps = %d", c.World.MaxSubSteps)
	}
	if c.World.Actors < 0 {
		return invalid("world.actors = %d", c.World.Actors)
	}
	if c.World.Level.FloorTiles < 0 || c.World.Level.RandomBoxes < 0 {
		return invalid("world.level counts must not be negative")
	}
	if c.Console.TickInterval <= 0 {
		return invalid("console.tick_interval = %v", c.Console.TickInterval)
	}
	if c.Console.MovePulse <= 0 {
		return invalid("console.move_pulse = %v", c.Console.MovePulse)
	}
	return nil
}

// PhysicsStep is the fixed simulation step in seconds.
func (w WorldConfig) PhysicsStep() float64 {
	if w.TickRate <= 0 {
		return 0
	}
	return 1.0 / float64(w.TickRate)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func finite(v float64) bool      { return !math.IsNaN(v) && !math.IsInf(v, 0) }
func nonNegative(v float64) bool { return finite(v) && v >= 0 }
func positive(v float64) bool    { return finite(v) && v > 0 }
