package main

import (
	"context"
	"os"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/spf13/cobra"
)

var (
	listVersionType string
	listLimit       int
	listAll         bool
	listCursor      string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your photos",
	Long: `List your photos, newest first.

Examples:
  snapvault-cli list
  snapvault-cli list --version-type edited
  snapvault-cli list --limit 10 --cursor "eyJjcmVhdGVkX2F0Ijoi..."
  snapvault-cli list --all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listVersionType, "version-type", "", "only photos whose current version is original or edited")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "max results per page (server default when 0)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "pagination cursor")
}

func runList(_ *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(context.Background(), clientcli.ListOptions{
		VersionType: listVersionType,
		Limit:       listLimit,
		Cursor:      listCursor,
		All:         listAll,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
