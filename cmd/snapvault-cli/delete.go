package main

import (
	"context"
	"os"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <photo-id> [photo-id...]",
	Aliases: []string{"rm"},
	Short:   "Delete photos",
	Long: `Delete one or more photos with all of their versions.

Examples:
  snapvault-cli delete 3f0c7a0e-5d1b-4c4e-9d8e-1f2a3b4c5d6e
  snapvault-cli delete -q id-1 id-2 id-3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(context.Background(), clientcli.DeleteOptions{PhotoIDs: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
