// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/peopledir/peopledir/internal/config"
	"github.com/peopledir/peopledir/internal/identity"
	identitypg "github.com/peopledir/peopledir/internal/identity/postgres"
	"github.com/peopledir/peopledir/internal/logging"
	"github.com/peopledir/peopledir/internal/observability"
	"github.com/peopledir/peopledir/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity service",
		Long: `Start the identity service: connect to PostgreSQL, apply pending
migrations, ensure the bootstrap admin exists, and run the expired-secret
scavenger and observability endpoints until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("app_name", "", "application name used in mail subjects")
	cmd.Flags().String("base_url", "", "application base URL embedded in mail links")
	cmd.Flags().String("log_format", "", "log format (json or text)")
	cmd.Flags().String("metrics_addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Duration("verification_ttl", 0, "verification code lifetime")
	cmd.Flags().Duration("reset_ttl", 0, "reset token lifetime")
	cmd.Flags().Duration("scavenge_interval", 0, "expired secret purge interval")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("peopledir", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting identity service",
		"app_name", cfg.AppName,
		"log_format", cfg.LogFormat,
	)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	if err := applyMigrations(databaseURL, logger); err != nil {
		return err
	}

	svc, scavenger, err := buildService(cfg, pool, logger)
	if err != nil {
		return err
	}

	if adminPassword := os.Getenv("ADMIN_PASSWORD"); adminPassword != "" {
		if _, err := svc.BootstrapAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, adminPassword); err != nil {
			return err
		}
	} else {
		logger.Info("ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go scavenger.Run(ctx)

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go func() {
			if serveErr, ok := <-obsErrChan; ok && serveErr != nil {
				logger.Error("observability server failed, shutting down", "error", serveErr)
				cancel()
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Identity service started")
	logger.Info("identity service ready")

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	cancel()

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// applyMigrations brings the schema up to date at startup.
func applyMigrations(databaseURL string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Info("database schema up to date")
		return nil
	}

	logger.Info("applying migrations", "pending", len(pending))
	if err := migrator.Up(); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

// buildService assembles the identity service and its scavenger from the
// configuration and connection pool.
func buildService(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*identity.Service, *identity.Scavenger, error) {
	codec := identity.NewArgonCodec()
	clock := identity.SystemClock{}
	mailer := identity.NewLogMailer(logger)

	principals := identitypg.NewPrincipalRepository(pool)
	codeRepo := identitypg.NewVerificationCodeRepository(pool)
	tokenRepo := identitypg.NewResetTokenRepository(pool)

	codes, err := identity.NewCodeIssuer(codeRepo, codec, clock, cfg.VerificationTTL)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := identity.NewTokenIssuer(tokenRepo, codec, clock, cfg.ResetTTL)
	if err != nil {
		return nil, nil, err
	}

	svc, err := identity.NewServiceWithLogger(principals, codes, tokens, codec, clock, mailer, identity.ServiceConfig{
		AppName: cfg.AppName,
		BaseURL: cfg.BaseURL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	scavenger, err := identity.NewScavenger(codes, tokens, cfg.ScavengeInterval, logger)
	if err != nil {
		return nil, nil, err
	}

	return svc, scavenger, nil
}
