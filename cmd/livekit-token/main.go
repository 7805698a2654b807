package main

import (
	"fmt"
	"os"

	"github.com/longregen/livekit-token/internal/adapters/logging"
	"github.com/longregen/livekit-token/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "livekit-token",
		Short: "livekit-token - LiveKit access token function",
		Long: `livekit-token issues short-lived LiveKit access tokens that let a
user join one room with publish and subscribe rights.

It can run as an HTTP server, or handle a single invocation on
stdin/stdout the way a serverless platform would call it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			// stdout carries invocation results
			logging.Setup(os.Stderr, cfg.Log.Level)

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(),
		invokeCmd(),
		inspectCmd(),
		configCmd(),
		versionCmd(),
	)

	return rootCmd
}

// configCmd shows current configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Current configuration:")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "LiveKit:")
			fmt.Fprintf(out, "  URL:        %s\n", cfg.LiveKit.URL)
			fmt.Fprintf(out, "  API Key:    %s\n", maskSecret(cfg.LiveKit.APIKey))
			fmt.Fprintf(out, "  API Secret: %s\n", maskSecret(cfg.LiveKit.APISecret))
			fmt.Fprintf(out, "  Token TTL:  %s\n", cfg.LiveKit.TokenTTL)
			fmt.Fprintf(out, "  Status:     %s\n", boolStatus(cfg.IsLiveKitConfigured()))
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Server:")
			fmt.Fprintf(out, "  Address:      %s:%d\n", cfg.Server.Host, cfg.Server.Port)
			fmt.Fprintf(out, "  CORS Origins: %v\n", cfg.Server.CORSOrigins)
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Log Level: %s\n", cfg.Log.Level)
			fmt.Fprintf(out, "Tracing:   %t\n", cfg.Tracing.Enabled)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Environment variables:")
			fmt.Fprintln(out, "  LIVEKIT_TOKEN_LIVEKIT_URL (or LIVEKIT_URL)")
			fmt.Fprintln(out, "  LIVEKIT_TOKEN_LIVEKIT_API_KEY (or LIVEKIT_API_KEY)")
			fmt.Fprintln(out, "  LIVEKIT_TOKEN_LIVEKIT_API_SECRET (or LIVEKIT_API_SECRET)")
			fmt.Fprintln(out, "  LIVEKIT_TOKEN_TTL, LIVEKIT_TOKEN_SERVER_HOST, LIVEKIT_TOKEN_SERVER_PORT")
			fmt.Fprintln(out, "  LIVEKIT_TOKEN_CORS_ORIGINS, LIVEKIT_TOKEN_LOG_LEVEL, LIVEKIT_TOKEN_TRACING")
			fmt.Fprintln(out, "  LIVEKIT_TOKEN_CONFIG (config file path), LIVEKIT_TOKEN_ENV_FILE (.env path)")

			return nil
		},
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "livekit-token %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Build Date: %s\n", buildDate)
		},
	}
}
