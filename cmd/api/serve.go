package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/auspex/internal/application"
	appprompts "github.com/bryanwahyu/auspex/internal/application/prompts"
	apptm "github.com/bryanwahyu/auspex/internal/application/threatmodel"
	"github.com/bryanwahyu/auspex/internal/infra/ai/prompt"
	"github.com/bryanwahyu/auspex/internal/infra/ai/providers"
	"github.com/bryanwahyu/auspex/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/auspex/internal/infra/storage"
	"github.com/bryanwahyu/auspex/internal/middleware"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	templates := prompt.NewTemplates(cfg.Prompts.Dir)

	// database is optional; without it prompts are read-only file defaults
	repo, closeDB, err := openRepository(ctx, cfg.Database)
	if err != nil {
		log.Warn("database unavailable, prompts are read-only", zap.Error(err))
	}
	defer closeDB()

	promptSvc := appprompts.NewService(repo, templates, log)
	if err := promptSvc.Init(ctx); err != nil {
		log.Warn("prompt store init failed", zap.Error(err))
	}

	metrics := middleware.NewMetrics("auspex")
	registry := providers.FromConfig(cfg.Providers, templates, log, metrics)

	checkers := healthCheckers(promptSvc)
	svc := &apptm.Service{
		Providers: registry,
		Prompts:   promptSvc,
		Clock:     application.SystemClock{},
		Log:       log.Named("threatmodel"),
	}
	if cfg.Minio.Enabled() {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Warn("result archive disabled", zap.Error(err))
		} else {
			svc.Archive = store
			checkers["archive"] = store
		}
	}

	handler := httpserver.NewRouter(ctx, svc, promptSvc, httpserver.Options{
		Log:            log,
		Metrics:        metrics,
		HealthCheckers: checkers,
		Providers:      registry.Available,
		APIKeys:        cfg.Server.APIKeys,
		RateLimit: httpserver.RateLimit{
			Capacity:   cfg.Server.RateLimit.Capacity,
			RefillRate: cfg.Server.RateLimit.RefillRate,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", addr),
			zap.Bool("database", promptSvc.Persistent()),
			zap.Bool("archive", svc.Archive != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// healthCheckers checks the database only when prompts are stored in one.
func healthCheckers(promptSvc *appprompts.Service) map[string]middleware.HealthChecker {
	checkers := map[string]middleware.HealthChecker{}
	if promptSvc.Persistent() {
		checkers[middleware.DatabaseCheck] = promptSvc
	}
	return checkers
}
