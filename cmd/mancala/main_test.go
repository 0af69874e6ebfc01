package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/petal-mancala/internal/ai"
	"github.com/jaminalder/petal-mancala/internal/config"
	"github.com/jaminalder/petal-mancala/internal/domain"
)

func quietSelector(seed uint64) *ai.Selector {
	return ai.NewSelector(ai.WithSeed(seed), ai.WithLogger(zerolog.Nop()))
}

func TestPlayOneFinishes(t *testing.T) {
	s, plies := playOne(quietSelector(7))
	assert.True(t, s.Over)
	assert.Positive(t, plies)
	assert.NoError(t, domain.CheckInvariants(s))
}

func TestRunSelfPlayTally(t *testing.T) {
	prev := log.Logger
	log.Logger = zerolog.Nop()
	t.Cleanup(func() { log.Logger = prev })

	got := runSelfPlay(context.Background(), quietSelector(3), 20)
	assert.Equal(t, 20, got.Games)
	assert.Equal(t, got.Games, got.WinsA+got.WinsB+got.Ties)
	assert.Positive(t, got.Plies)

	again := runSelfPlay(context.Background(), quietSelector(3), 20)
	assert.Equal(t, got, again, "same seed plays the same games")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, runSelfPlay(ctx, quietSelector(3), 5).Games)
}

func TestSetupLoggingToFile(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "mancala.log")
	closeLog, err := setupLogging(config.LogConfig{Level: "warn", Format: "json", File: path})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"shown"`)
	assert.NotContains(t, string(data), "hidden")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	_, err = setupLogging(config.LogConfig{Level: "loud", Format: "console", File: "-"})
	assert.Error(t, err)
}

func TestUISettingsFromConfig(t *testing.T) {
	s := uiSettings(config.UIConfig{
		AnimationStep: 50 * time.Millisecond,
		ComputerDelay: 2 * time.Second,
		HumanLabel:    "Ana",
		ComputerLabel: "Petal",
	})
	assert.Equal(t, 50*time.Millisecond, s.AnimationStep)
	assert.Equal(t, 2*time.Second, s.ComputerDelay)
	assert.Equal(t, "Ana", s.HumanLabel)
	assert.Equal(t, "Petal", s.ComputerLabel)
}
