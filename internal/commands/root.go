package commands

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/app"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(app.LogLevel()),
	})))

	err := NewRootCmd(version).Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "coinwatch",
		Short:         "Track crypto prices, favorites and target-price alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return printSuccess(cmd, resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Flags apply to this invocation only.
			dbPath, _ := cmd.Flags().GetString("db-path")
			app.SetDBPathOverride(dbPath)
			apiURL, _ := cmd.Flags().GetString("api-url")
			app.SetAPIURLOverride(apiURL)

			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override database path (default: $COINWATCH_DB_PATH)")
	root.PersistentFlags().String("api-url", "", "Override market data API base URL (default: $COINWATCH_API_URL)")
	root.Flags().BoolP("version", "v", false, "version for coinwatch")

	root.AddCommand(NewAccountCmd())
	root.AddCommand(NewCoinCmd())
	root.AddCommand(NewFavoriteCmd())
	root.AddCommand(NewAlertCmd())
	root.AddCommand(NewWatchCmd())
	root.AddCommand(NewEventsCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewDBCmd())
	root.AddCommand(NewSchemaCmd(root))

	return root
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
