package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <photo-id>",
	Short: "Show photo metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	meta, err := client.Info(context.Background(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatInfo(os.Stdout, meta)
}
