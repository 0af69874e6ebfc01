package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mancala.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "mancala.log", c.Log.File)
	assert.Equal(t, uint64(0), c.AI.Seed)
	assert.Equal(t, 200*time.Millisecond, c.UI.AnimationStep)
	assert.Equal(t, time.Second, c.UI.ComputerDelay)
	assert.Equal(t, "You", c.UI.HumanLabel)
	assert.Equal(t, "Computer", c.UI.ComputerLabel)
	assert.Equal(t, 0, c.SelfPlay.Games)
	assert.Empty(t, ConfigFilePath())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
  file: ""
ai:
  seed: 1234
ui:
  animation_step: 50ms
  computer_delay: 2s
  human_label: Player
`)
	require.NoError(t, Init(path))

	c := Get()
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Empty(t, c.Log.File)
	assert.Equal(t, uint64(1234), c.AI.Seed)
	assert.Equal(t, 50*time.Millisecond, c.UI.AnimationStep)
	assert.Equal(t, 2*time.Second, c.UI.ComputerDelay)
	assert.Equal(t, "Player", c.UI.HumanLabel)
	assert.Equal(t, "Computer", c.UI.ComputerLabel, "unset keys keep defaults")
	assert.Equal(t, path, ConfigFilePath())
}

func TestEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MANCALA_AI_SEED", "99")
	t.Setenv("MANCALA_UI_COMPUTER_DELAY", "0s")
	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, uint64(99), c.AI.Seed)
	assert.Equal(t, time.Duration(0), c.UI.ComputerDelay)
}

func TestInitErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		assert.Error(t, Init(filepath.Join(t.TempDir(), "nope.yaml")))
	})
	t.Run("invalid value", func(t *testing.T) {
		path := writeConfig(t, "log:\n  level: loud\n")
		err := Init(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.level")
	})
}

func TestSet(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, Init(""))

	require.NoError(t, Set("ai.seed", 5))
	assert.Equal(t, uint64(5), Get().AI.Seed)

	assert.Error(t, Set("log.format", "xml"))
	assert.Equal(t, "console", Get().Log.Format, "rejected values are not applied")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Log: LogConfig{Level: "info", Format: "console"},
			UI:  UIConfig{AnimationStep: time.Millisecond, HumanLabel: "You", ComputerLabel: "Computer"},
		}
	}
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative animation", func(c *Config) { c.UI.AnimationStep = -time.Second }},
		{"negative delay", func(c *Config) { c.UI.ComputerDelay = -time.Second }},
		{"blank label", func(c *Config) { c.UI.HumanLabel = "  " }},
		{"negative games", func(c *Config) { c.SelfPlay.Games = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, Validate(c))
		})
	}
}
