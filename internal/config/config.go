package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	AI       AIConfig       `mapstructure:"ai"`
	UI       UIConfig       `mapstructure:"ui"`
	SelfPlay SelfPlayConfig `mapstructure:"selfplay"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// AIConfig holds computer opponent settings
type AIConfig struct {
	// Seed for the tie-breaking random source; 0 seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

// UIConfig holds terminal front-end settings
type UIConfig struct {
	AnimationStep time.Duration `mapstructure:"animation_step"`
	ComputerDelay time.Duration `mapstructure:"computer_delay"`
	HumanLabel    string        `mapstructure:"human_label"`
	ComputerLabel string        `mapstructure:"computer_label"`
}

// SelfPlayConfig holds headless computer-vs-computer settings
type SelfPlayConfig struct {
	Games int `mapstructure:"games"`
}

const envPrefix = "MANCALA"

var (
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "mancala.log")

	v.SetDefault("ai.seed", 0)

	v.SetDefault("ui.animation_step", 200*time.Millisecond)
	v.SetDefault("ui.computer_delay", time.Second)
	v.SetDefault("ui.human_label", "You")
	v.SetDefault("ui.computer_label", "Computer")

	v.SetDefault("selfplay.games", 0)
}

// Init loads defaults, the optional config file and MANCALA_* environment
// overrides. An empty configPath searches ./mancala.yaml and ./config/.
func Init(configPath string) error {
	nv := viper.New()
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("mancala")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
	}

	nv.SetEnvPrefix(envPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := nv.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	v, cfg = nv, c
	mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration, initializing it with
// defaults on first use.
func Get() Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
		return Get()
	}
	return *c
}

// Set overrides a single key at runtime, e.g. from a command-line flag.
func Set(key string, value any) error {
	mu.Lock()
	defer mu.Unlock()
	if v == nil {
		return errors.New("config not initialized - call Init() first")
	}
	prev := v.Get(key)
	v.Set(key, value)
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		v.Set(key, prev)
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		v.Set(key, prev)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	cfg = c
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// WatchConfig reloads the config file when it changes and calls onChange
// with the new values. Invalid edits are reported through onError and the
// previous configuration is kept.
func WatchConfig(onChange func(Config), onError func(error)) {
	mu.RLock()
	wv := v
	mu.RUnlock()
	if wv == nil || wv.ConfigFileUsed() == "" {
		return
	}
	wv.OnConfigChange(func(e fsnotify.Event) {
		c := &Config{}
		err := wv.Unmarshal(c)
		if err == nil {
			err = Validate(c)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		mu.Lock()
		cfg = c
		mu.Unlock()
		if onChange != nil {
			onChange(*c)
		}
	})
	wv.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json")
	}
	if c.UI.AnimationStep < 0 {
		return fmt.Errorf("ui.animation_step must be non-negative")
	}
	if c.UI.ComputerDelay < 0 {
		return fmt.Errorf("ui.computer_delay must be non-negative")
	}
	if strings.TrimSpace(c.UI.HumanLabel) == "" || strings.TrimSpace(c.UI.ComputerLabel) == "" {
		return fmt.Errorf("ui labels must not be empty")
	}
	if c.SelfPlay.Games < 0 {
		return fmt.Errorf("selfplay.games must be non-negative")
	}
	return nil
}
