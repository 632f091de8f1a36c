package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/programs"
	"github.com/spf13/cobra"
)

// env is the per-invocation state shared by every command.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

var app = &env{
	cfg:    config.Default(),
	logger: logging.NewNop(),
}

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Turing is a deterministic single-tape Turing machine simulator",
	Long: `Turing compiles rule programs (one "state read write move next" rule per line)
and runs them on an unbounded tape, writing a step-by-step trace.

It ships a binary multiplication program and tools to measure how its running
time grows with the input.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		app.close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		app.close()
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().String("programs", "", "Directory of .tm programs consulted before the shipped ones")
}

func (e *env) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if dir, _ := cmd.Flags().GetString("programs"); dir != "" {
		cfg.Engine.ProgramsDir = dir
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logger := logging.New(level)
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		e.closers = append(e.closers, f)
		logger = logging.NewWithFile(level, f)
	}

	e.cfg = cfg
	e.logger = logger
	logger.Debug("configuration loaded", "path", path, "store", cfg.Store.Backend)
	return nil
}

func (e *env) close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
	e.closers = nil
}

// loader resolves program names: the configured directory first, then the
// shipped programs.
func (e *env) loader() ports.ProgramLoader {
	if e.cfg.Engine.ProgramsDir == "" {
		return programs.NewRegistry()
	}
	return programs.Chain{file.NewLoader(e.cfg.Engine.ProgramsDir), programs.NewRegistry()}
}

// source reads a program given a file path or a program name.
func (e *env) source(ctx context.Context, pathOrName string) (string, error) {
	return file.ReadSource(ctx, pathOrName, e.loader())
}

// store opens the configured result store.
func (e *env) store() (ports.ResultStore, error) {
	switch e.cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewStore(), nil
	case config.StoreRedis:
		ttl, err := e.cfg.StoreTTL()
		if err != nil {
			return nil, err
		}
		rc := e.cfg.Redis
		s := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(ttl))
		e.closers = append(e.closers, s)
		return s, nil
	default:
		return file.NewStore(e.cfg.Store.Dir), nil
	}
}
