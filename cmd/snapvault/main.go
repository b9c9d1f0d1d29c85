package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/snapvault/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "snapvault",
	Short:   "Photo management backend with presigned uploads",
	Long: `snapvault stores photo metadata in a database and hands out
time-limited presigned URLs for uploading and downloading the photo
bytes from an object store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if f, _ := cmd.Flags().GetStringSlice("config"); len(f) > 0 {
			files = f
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres, dynamodb, mongo (env: SNAPVAULT_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: SNAPVAULT_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-type", "", "object store: filesystem, s3, minio (env: SNAPVAULT_STORAGE_TYPE)")
	rootCmd.PersistentFlags().String("storage-path", "", "filesystem store directory (env: SNAPVAULT_STORAGE_FILESYSTEM_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: SNAPVAULT_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
