package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/config"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/observability"
)

var (
	dbPath   string
	logLevel string
	settings *config.Settings
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bookctl",
		Short:        "Render and inspect creator books",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			observability.Init(observability.LogOptions{
				Format: "text",
				Level:  logLevel,
				App:    "bookctl",
				Output: cmd.ErrOrStderr(),
			})

			s, err := config.Load()
			if err != nil {
				return err
			}
			settings = s
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "export ledger (SQLite) to record into; empty disables recording")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(exportCmd(), validateCmd(), statsCmd(), historyCmd(), workspaceCmd())
	return root
}

func readBook(path string) (*export.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read book: %w", err)
	}
	var book export.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("failed to parse book %s: %w", path, err)
	}
	return &book, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
