package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/debug"
	"github.com/Versifine/stride/internal/logger"
	"github.com/Versifine/stride/internal/scene"
	"github.com/Versifine/stride/internal/world"
	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

var CLI struct {
	Config string `help:"Path to the YAML configuration file." default:"configs/config.yaml" type:"path"`
	Debug  bool   `help:"Whether to enable debug logging."`

	Run struct {
		Headless bool          `help:"Run fixed ticks with full forward input instead of the console."`
		Duration time.Duration `help:"Simulated time for a headless run." default:"5s"`
	} `cmd:"" default:"withargs" help:"Run the movement sandbox."`

	Defaults struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("stride"),
		kong.Description("a first-person movement controller sandbox"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	switch ctx.Command() {
	case "defaults":
		if err := writeDefaults(os.Stdout); err != nil {
			writeError(err)
		}
	default:
		if err := runCommand(); err != nil {
			writeError(err)
		}
	}
}

func writeDefaults(w io.Writer) error {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// loadConfig reads path, falling back to the built-in defaults when the file
// does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCommand() error {
	cfg, err := loadConfig(CLI.Config)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if CLI.Debug {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}); err != nil {
		return err
	}
	defer logger.Close()

	if CLI.Debug {
		slog.Warn("debug logging enabled")
	}

	state := world.NewWorldState()
	sc, err := scene.New(cfg, scene.WithWorldState(state))
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}

	if CLI.Run.Headless {
		res := runHeadless(sc, cfg.World.TickRate, CLI.Run.Duration)
		slog.Info("Headless run finished",
			"ticks", res.Ticks,
			"speed", res.Speed,
			"position", res.Position,
			"jumps", res.Stats.Jumps,
			"landings", res.Stats.Landings,
		)
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := debug.NewConsole(sc, state, sc.Level(), debug.Options{
		TickInterval: cfg.Console.TickInterval,
		MovePulse:    cfg.Console.MovePulse,
		YawStep:      cfg.Console.YawStep,
		PitchStep:    cfg.Console.PitchStep,
	})
	return console.Start(sigCtx)
}
