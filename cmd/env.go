package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mistakecoach/internal/coach"
	"github.com/abhisek/mistakecoach/internal/config"
	"github.com/abhisek/mistakecoach/internal/learner"
	"github.com/abhisek/mistakecoach/internal/llm"
	"github.com/abhisek/mistakecoach/internal/screen"
	"github.com/abhisek/mistakecoach/internal/store"
	"github.com/abhisek/mistakecoach/internal/voice"
)

// env holds what a command needs: configuration, the open store, the
// learner state and the coach.
type env struct {
	cfg     config.Config
	store   *store.Store
	learner *learner.State
	coach   *coach.Client
	logFile *os.File
}

// loadConfig reads the config file named by --config and applies
// --log-level.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := config.ParseLevel(lvl); err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// openEnv loads config, starts file logging, opens the store and loads the
// learner. A missing model provider is reported but not fatal.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	if e.logFile, err = setupLogging(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
	}

	if e.store, err = openDB(cmd, cfg); err != nil {
		e.Close()
		return nil, err
	}

	ctx := cmd.Context()
	if e.learner, err = learner.Load(ctx, e.store.KV()); err != nil {
		e.Close()
		return nil, fmt.Errorf("load learner: %w", err)
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, e.store.EventRepo())
	if err != nil {
		slog.Warn("model provider unavailable", "error", err)
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		provider = nil
	}
	e.coach = coach.NewClient(provider, coach.DefaultConfig())
	return e, nil
}

// openStore opens the database without loading the learner or a provider.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openDB(cmd, cfg)
}

func openDB(cmd *cobra.Command, cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd, cfg.Data.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// deps returns the screen dependencies for the TUI.
func (e *env) deps() screen.Deps {
	return screen.Deps{
		Coach:   e.coach,
		Learner: e.learner,
		Events:  e.store.EventRepo(),
		Voice:   voice.FlowConfig(e.cfg),
		Started: time.Now(),
	}
}

func (e *env) Close() error {
	var err error
	if e.store != nil {
		err = e.store.Close()
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
	return err
}

// setupLogging sends slog output to <data dir>/mistakecoach.log so the
// terminal stays clean.
func setupLogging(level string) (*os.File, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	dir, err := store.DataDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "mistakecoach.log")
	if err := store.EnsureDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
	return f, nil
}
