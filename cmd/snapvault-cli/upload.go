package main

import (
	"context"
	"os"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadDescription string
	uploadTags        []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload photos",
	Long: `Upload a photo, or every image in a directory with --recursive.

Each file is registered with the server and then sent to the presigned
URL the server returns. The new photo id is printed for each file.

Examples:
  snapvault-cli upload ./beach.jpg
  snapvault-cli upload --tag beach --tag summer --description "sunset" ./beach.jpg
  snapvault-cli upload -r ./holiday/`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload every image in a directory")
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override content-type")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "photo description")
	uploadCmd.Flags().StringArrayVar(&uploadTags, "tag", nil, "photo tag (repeatable)")
}

func runUpload(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(context.Background(), clientcli.UploadOptions{
		LocalPath:   args[0],
		ContentType: uploadContentType,
		Description: uploadDescription,
		Tags:        uploadTags,
		Recursive:   uploadRecursive,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}

	return nil
}
