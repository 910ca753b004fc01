package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"donationhub/internal/models"
	"donationhub/internal/settings"
)

var settingsTab string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect the admin settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings for one tab as JSON",
	Long: `Print the admin settings for a tab: general (branding and contact),
security (rate limiter) or system (environment). Needs an admin token.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		s, err := settings.New(client.Admin.Settings).Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		return printSettings(cmd.OutOrStdout(), settings.ParseTab(settingsTab), s)
	},
}

func init() {
	settingsShowCmd.Flags().StringVar(&settingsTab, "tab", string(settings.General), "Tab to show: general, security or system")
	settingsCmd.AddCommand(settingsShowCmd)
}

func printSettings(w io.Writer, tab settings.Tab, s models.Settings) error {
	var v any
	switch tab {
	case settings.Security:
		v = map[string]any{
			"rateLimiter":   s.RateLimiter,
			"windowMinutes": s.RateLimiter.WindowMinutes(),
		}
	case settings.System:
		env := s.Environment
		if env == nil {
			env = map[string]any{}
		}
		v = map[string]any{"environment": env}
	default:
		v = map[string]any{
			"branding":  s.Branding,
			"contact":   s.Contact,
			"copyright": s.Copyright,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
