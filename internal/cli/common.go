package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jrctsi/AdaptiveStarter/internal/casefile"
	"github.com/jrctsi/AdaptiveStarter/internal/clock"
	"github.com/jrctsi/AdaptiveStarter/internal/config"
	"github.com/jrctsi/AdaptiveStarter/internal/contour"
	"github.com/jrctsi/AdaptiveStarter/internal/crop"
	"github.com/jrctsi/AdaptiveStarter/internal/fsops"
	"github.com/jrctsi/AdaptiveStarter/internal/hash"
)

// session wires the shared dependencies of one command invocation: the
// settings, the logger, the crop engine, and the report writer.
type session struct {
	paths    *config.Paths
	settings *config.Settings
	log      *slog.Logger
	engine   *crop.Engine
	reports  *casefile.ReportWriter
}

// newSession creates a session with real implementations of all
// dependencies.
func newSession() (*session, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	settings, err := config.LoadSettings(paths)
	if err != nil {
		return nil, err
	}

	log := newLogger(settings.Log)
	fs := fsops.NewRealFS()

	return &session{
		paths:    paths,
		settings: settings,
		log:      log,
		engine:   crop.New(log),
		reports:  casefile.NewReportWriter(fs, hash.NewSHA256Hasher(), &clock.RealClock{}),
	}, nil
}

// newLogger builds the slog logger the settings describe. Logs go to
// stderr so stdout stays parseable under --json.
func newLogger(s config.LogSettings) *slog.Logger {
	var level slog.Level
	switch s.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if s.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// loadCollection loads a case file and builds its contour collection.
func loadCollection(path string) (*casefile.Case, *contour.MemoryCollection, error) {
	c, err := casefile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	col, err := c.Collection()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, col, nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
