package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/snapvault"
	"github.com/sagarc03/snapvault/auth"
	"github.com/sagarc03/snapvault/config"
	snapvaulthttp "github.com/sagarc03/snapvault/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the snapvault HTTP API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")
	serveCmd.Flags().String("public-url", "", "externally reachable base URL of this server")
	serveCmd.Flags().String("identity", "", "caller identity mode: header, jwt")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.Database.AutoMigrate {
		if err = db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	storage, err := openObjectStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.close()

	service, err := snapvault.NewPhotoService(db.GetRepo(), storage.store, snapvault.ServiceConfig{
		Buckets:       cfg.Storage.Buckets,
		CredentialTTL: cfg.Service.TTL(),
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	resolver, err := auth.NewResolver(cfg.Identity.Mode, cfg.Identity.Header,
		cfg.Identity.JWT.Secret, cfg.Identity.JWT.Issuer, cfg.Identity.JWT.Audience)
	if err != nil {
		return fmt.Errorf("create identity resolver: %w", err)
	}

	handler := snapvaulthttp.NewHandler(&snapvaulthttp.HandlerConfig{
		Identity: resolver,
		CORS:     cfg.CORS,
		Objects:  storage.objects,
	}, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "storage", cfg.Storage.Type, "identity", cfg.Identity.Mode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
