package cli

import (
	"io"
	"os"

	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/logger"
)

// app is the loaded config plus the logger every command shares.
type app struct {
	cfg     *config.Config
	cfgPath string
	log     logger.Logger
	logFile *os.File
}

// loadApp resolves config and logging from the global flags. Logs go to
// --log-file (or log.file) when set, otherwise to fallback.
func loadApp(fallback io.Writer) (*app, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if logFileFlag != "" {
		cfg.Log.File = logFileFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, cfgPath: path}
	if err := a.openLog(fallback); err != nil {
		return nil, err
	}
	logger.SetDefault(a.log)

	if path != "" {
		a.log.Debug("loaded config from %s", path)
	} else {
		a.log.Debug("no config file found, using defaults")
	}
	return a, nil
}

func (a *app) openLog(fallback io.Writer) error {
	level, err := logger.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return err
	}

	opts := logger.Options{Writer: fallback, Level: level, NoColor: noColor}
	if a.cfg.Log.File != "" {
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot open log file "+a.cfg.Log.File,
				"Check the directory exists and is writable, or drop --log-file")
		}
		a.logFile = f
		opts.Writer = f
		opts.NoColor = true
	}
	if opts.Writer == nil {
		opts.Writer = io.Discard
	}
	a.log = logger.New(opts)
	return nil
}

// Close releases the log file, if any.
func (a *app) Close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) newClient() *feed.Client {
	return feed.NewClient(a.cfg.Channel,
		feed.WithTimeout(a.cfg.HTTPTimeout),
		feed.WithLogger(a.log))
}

// newCycle wires a fetcher to a fresh state cell.
func (a *app) newCycle() *feed.Cycle {
	return feed.NewCycle(a.newClient(), feed.NewState(), a.log)
}
