package main

import (
	"context"
	"io"
	"os"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput  string
	downloadStdout  bool
	downloadVersion string
)

var downloadCmd = &cobra.Command{
	Use:   "download <photo-id> [local-path]",
	Short: "Download a photo",
	Long: `Download a photo through a presigned URL.

The original is fetched unless --version edited is given. The file is
saved under the photo's original name unless a local path is given.

Examples:
  snapvault-cli download 3f0c7a0e-5d1b-4c4e-9d8e-1f2a3b4c5d6e
  snapvault-cli download --version original 3f0c7a0e-5d1b-4c4e-9d8e-1f2a3b4c5d6e ./orig.jpg
  snapvault-cli download --stdout 3f0c7a0e-5d1b-4c4e-9d8e-1f2a3b4c5d6e > photo.jpg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.Flags().StringVar(&downloadVersion, "version", "", "version to fetch (original or edited)")
}

func runDownload(_ *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(context.Background(), clientcli.DownloadOptions{
		PhotoID:   args[0],
		Version:   downloadVersion,
		LocalPath: localPath,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout stays the raw image.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
