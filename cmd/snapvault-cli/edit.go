package main

import (
	"context"
	"os"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/spf13/cobra"
)

var editContentType string

var editCmd = &cobra.Command{
	Use:   "edit <photo-id> <local-path>",
	Short: "Upload an edited version of a photo",
	Long: `Upload an edited version of an existing photo.

The original is kept. A previous edited version is replaced.

Examples:
  snapvault-cli edit 3f0c7a0e-5d1b-4c4e-9d8e-1f2a3b4c5d6e ./beach-cropped.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editContentType, "content-type", "", "override content-type")
}

func runEdit(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Edit(context.Background(), args[0], clientcli.UploadOptions{
		LocalPath:   args[1],
		ContentType: editContentType,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatUpload(os.Stdout, []clientcli.UploadResult{*result})
}
