package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jaminalder/petal-mancala/internal/ai"
	"github.com/jaminalder/petal-mancala/internal/app"
	"github.com/jaminalder/petal-mancala/internal/config"
	"github.com/jaminalder/petal-mancala/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	logFile := flag.String("log-file", "", "Log file, '-' for stderr (empty to use config default)")
	seed := flag.Uint64("seed", 0, "Seed for the computer's tie-breaks (0 to use config default)")
	selfPlay := flag.Int("selfplay", -1, "Play N computer-vs-computer games without a UI (-1 to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	overrides := map[string]any{}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *logFile != "" {
		overrides["log.file"] = *logFile
	}
	if *seed != 0 {
		overrides["ai.seed"] = *seed
	}
	if *selfPlay >= 0 {
		overrides["selfplay.games"] = *selfPlay
	}
	for key, value := range overrides {
		if err := config.Set(key, value); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Invalid flag")
		}
	}
	cfg := config.Get()

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closeLog()

	var selectorOpts []ai.Option
	if cfg.AI.Seed != 0 {
		selectorOpts = append(selectorOpts, ai.WithSeed(cfg.AI.Seed))
	}
	selector := ai.NewSelector(selectorOpts...)

	log.Info().
		Str("config_file", config.ConfigFilePath()).
		Str("log_level", cfg.Log.Level).
		Uint64("seed", cfg.AI.Seed).
		Int("selfplay_games", cfg.SelfPlay.Games).
		Msg("Starting mancala")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SelfPlay.Games > 0 {
		runSelfPlay(ctx, selector, cfg.SelfPlay.Games)
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open terminal")
	}
	ui := tui.New(screen, app.NewService(app.WithSelector(selector)), uiSettings(cfg.UI))

	config.WatchConfig(func(c config.Config) {
		ui.SetSettings(uiSettings(c.UI))
		if lvl, err := zerolog.ParseLevel(c.Log.Level); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
		log.Info().Msg("Config reloaded")
	}, func(err error) {
		log.Warn().Err(err).Msg("Ignoring config change")
	})

	if err := ui.Run(ctx); err != nil {
		closeLog()
		log.Fatal().Err(err).Msg("Game stopped")
	}
	log.Info().Msg("Bye")
}

func uiSettings(c config.UIConfig) tui.Settings {
	return tui.Settings{
		AnimationStep: c.AnimationStep,
		ComputerDelay: c.ComputerDelay,
		HumanLabel:    c.HumanLabel,
		ComputerLabel: c.ComputerLabel,
	}
}

// setupLogging configures the global logger. The terminal belongs to the
// game, so logs go to a file; "-" selects stderr and "" disables logging.
func setupLogging(c config.LogConfig) (func(), error) {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch c.File {
	case "-":
	case "":
		out = io.Discard
	default:
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	if c.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    c.File != "-",
			TimeFormat: time.RFC3339,
		})
	}
	return closeFn, nil
}
