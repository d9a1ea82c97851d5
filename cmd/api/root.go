package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bryanwahyu/auspex/internal/config"
	domprompts "github.com/bryanwahyu/auspex/internal/domain/prompts"
	mysqlp "github.com/bryanwahyu/auspex/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/auspex/internal/infra/db/postgres"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "auspex",
		Short:        "Threat modeling API for architecture diagrams",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default $CONFIG_PATH or config.yaml)")

	cmd.AddCommand(newServeCmd(opts), newPromptsCmd(opts))
	return cmd
}

// load reads .env, then the yaml config, and builds the logger.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}

	path := o.configPath
	if path == "" {
		path = "config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config load: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// openRepository connects the configured database. It returns a nil
// Repository (and a no-op close) when no database is configured.
func openRepository(ctx context.Context, db config.Database) (domprompts.Repository, func(), error) {
	dsn := db.DSN()
	if dsn == "" {
		return nil, func() {}, nil
	}
	switch db.Driver {
	case "postgres", "postgresql":
		conn, err := pgp.Connect(ctx, dsn)
		if err != nil {
			return nil, func() {}, fmt.Errorf("postgres connect: %w", err)
		}
		return pgp.NewPromptRepository(conn), func() { conn.Close() }, nil
	case "mysql":
		conn, err := mysqlp.Connect(ctx, dsn)
		if err != nil {
			return nil, func() {}, fmt.Errorf("mysql connect: %w", err)
		}
		return mysqlp.NewPromptRepository(conn), func() { conn.Close() }, nil
	}
	return nil, func() {}, fmt.Errorf("unsupported database driver %q", db.Driver)
}
