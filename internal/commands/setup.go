package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cleared-dev/ynabimport/internal/config"
	"github.com/cleared-dev/ynabimport/internal/log"
)

// loadConfig reads the config file, then the environment, then the global
// flags, each overriding the previous. An explicitly named file must exist.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	}
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logging config: %w", err)
	}
	logger, err := log.New(w, level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("logging config: %w", err)
	}
	return logger, nil
}
