// Command hubctl is the operator's command line for a DonationHub backend:
// CSV exports, a terminal campaign explorer and a settings viewer.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"donationhub/internal/api"
	"donationhub/internal/config"
	"donationhub/internal/logger"
	"donationhub/internal/version"
)

var (
	apiURL     string
	token      string
	configFile string
	verbose    bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "hubctl",
	Short: "Operate a DonationHub backend from the command line",
	Long: `hubctl talks to the DonationHub backend API.

Available commands:
  export   - Write campaigns or users to a CSV file
  explore  - Browse campaigns interactively
  settings - Show the admin settings`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// stdout carries exports, so logs go to stderr.
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger.Configure(os.Stderr, level, true)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend API base URL (default: API_BASE_URL or the config file)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("HUBCTL_TOKEN"), "Bearer token for admin endpoints (or set HUBCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(settingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration the same way the server does, with
// --config and --api taking precedence.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if configFile != "" {
		var err error
		if cfg, err = config.LoadFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(api.ClientConfig{
		BaseURL:     cfg.APIBaseURL,
		Tokens:      api.StaticToken(token),
		UserAgent:   version.UserAgent("hubctl"),
		Timeout:     cfg.APITimeout,
		RateLimiter: api.NewRateLimiter(cfg.APIRateLimit),
		Retry:       true,
	})
}
