// Package main provides the cinefeed CLI entry point.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cineconnect/cinefeed/internal/catalog"
	"github.com/cineconnect/cinefeed/internal/config"
	"github.com/cineconnect/cinefeed/internal/content"
	"github.com/cineconnect/cinefeed/internal/debuglog"
	"github.com/cineconnect/cinefeed/internal/session"
	"github.com/cineconnect/cinefeed/internal/tui"
	"github.com/cineconnect/cinefeed/internal/validation"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		apiURL      string
		sessionPath string
		quiet       bool
	)

	rootCmd := &cobra.Command{
		Use:     "cinefeed",
		Short:   "Terminal client for the CineConnect movie review network",
		Long:    "Cinefeed aggregates reviews and posts from CineConnect, resolves movie metadata from the external catalog, and renders it all in your terminal.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if sessionPath != "" {
				cfg.Session.Path = sessionPath
			}

			validator := validation.NewServiceURLValidator()
			if cfg.API.BaseURL, err = validator.ValidateAndNormalize(cfg.API.BaseURL); err != nil {
				return fmt.Errorf("invalid content service URL: %w", err)
			}
			if cfg.Catalog.BaseURL, err = validator.ValidateAndNormalize(cfg.Catalog.BaseURL); err != nil {
				return fmt.Errorf("invalid catalog URL: %w", err)
			}

			if err := debuglog.Setup(debuglog.ParseLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
				return err
			}
			defer debuglog.Close()

			if !quiet {
				tui.ShowBanner(version)
			}

			if dir := filepath.Dir(cfg.Session.Path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating session directory: %w", err)
				}
			}
			sessions, err := session.NewStore(cfg.Session.Path)
			if err != nil {
				return err
			}
			defer sessions.Close()

			client := content.NewClient(cfg.API.BaseURL,
				content.WithUserAgent(cfg.API.UserAgent),
				content.WithHTTPClient(&http.Client{Timeout: cfg.API.HTTPTimeout}),
			)
			cat := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey,
				catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.HTTPTimeout}),
				catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst),
			)

			app := tui.NewApp(cfg, client, cat, sessions)
			p := tea.NewProgram(app, tea.WithAltScreen())

			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate("cinefeed version {{.Version}}\n")

	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "Content service base URL (overrides config)")
	rootCmd.Flags().StringVar(&sessionPath, "session", "", "Path to session database (overrides config)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func defaultConfigFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cinefeed", "config.toml")
}

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile()
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), defaultConfigFile())
			return nil
		},
	})

	return cmd
}
