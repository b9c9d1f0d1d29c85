package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/snapvault/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the metadata table and the photo buckets",
	Long: `Create the photos table (or collection) with its owner indexes
and make sure both photo buckets exist. Safe to run repeatedly:
  - existing tables and indexes are left alone
  - existing buckets are left alone`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database ready", "type", cfg.Database.Type, "table", cfg.Database.Tables.Photos)

	storage, err := openObjectStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.close()

	if creator, ok := storage.store.(bucketCreator); ok {
		if err := creator.EnsureBuckets(ctx, cfg.Storage.Buckets.Originals, cfg.Storage.Buckets.Edited); err != nil {
			return fmt.Errorf("ensure buckets: %w", err)
		}
	}

	slog.Info("initialization complete",
		"storage", cfg.Storage.Type,
		"originals", cfg.Storage.Buckets.Originals,
		"edited", cfg.Storage.Buckets.Edited)
	return nil
}
