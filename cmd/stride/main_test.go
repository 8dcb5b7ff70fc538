package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Versifine/stride/internal/config"
	"github.com/Versifine/stride/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world: [oops"), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestWriteDefaultsRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDefaults(&buf))

	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRunHeadlessReachesMaxSpeed(t *testing.T) {
	cfg := config.Default()
	cfg.World.Actors = 0
	cfg.World.Level.RandomBoxes = 0
	cfg.World.Level.Boxes = nil

	sc, err := scene.New(cfg)
	require.NoError(t, err)

	res := runHeadless(sc, cfg.World.TickRate, time.Second)
	assert.Equal(t, uint64(60), res.Ticks)
	assert.InDelta(t, cfg.Controller.MaxSpeed, res.Speed, 1e-6)
	// 默认朝向 +Z
	assert.Greater(t, res.Position.Z(), 5.0)
	assert.Zero(t, res.Stats.Jumps)
}
