package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	server     string
	userID     string
	token      string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "snapvault-cli",
	Version:       version,
	Short:         "Client for the snapvault photo service",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `snapvault-cli - Client for the snapvault photo service

Photos are registered with the server, which hands back a short-lived
presigned URL. The CLI then sends or fetches the file content through
that URL directly.

Identity is sent either as a bearer token (--token) or as a user id
header (--user) when the server trusts a fronting proxy.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.snapvault/config.yaml, env: SNAPVAULT_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: SNAPVAULT_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: http://localhost:5708, env: SNAPVAULT_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id sent in the identity header (env: SNAPVAULT_USER_ID)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token (env: SNAPVAULT_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if !errors.As(err, &exit) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// getConfigPath resolves the config file from the flag, then the
// environment, then the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != ""

	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			if profileErr != nil && (profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case explicit || profileName != "":
			return nil, err
		}
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{
		Server: server,
		UserID: userID,
		Token:  token,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateIdentity(); err != nil {
		return nil, fmt.Errorf("%w (use --user, --token or a profile)", err)
	}

	return clientcli.New(cfg)
}

// handleError prints err with the active formatter and returns an
// exitError so main does not print it again.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want main to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
