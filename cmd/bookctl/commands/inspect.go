package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/export"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/model"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <book.json>",
		Short: "List every problem that blocks an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := readBook(args[0])
			if err != nil {
				return err
			}
			res := export.ValidateBookForExport(book)
			if res.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "Book is ready for export.")
				return nil
			}
			for _, msg := range res.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", msg)
			}
			return fmt.Errorf("%d problem(s) found", len(res.Errors))
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <book.json>",
		Short: "Print word, page and chapter counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := readBook(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, model.NewStatsResponse(book))
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded exports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath
			if path == "" {
				path = settings.DatabasePath
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("export ledger %s: %w", path, err)
			}

			db, err := store.Open(path)
			if err != nil {
				return err
			}
			repo := store.NewExportRepo(db)
			defer repo.Close()

			records, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-40s %d bytes\n",
					rec.CreatedAt.Format("2006-01-02 15:04"), rec.Format, rec.Filename, rec.SizeBytes)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}

func workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Google Workspace helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report which Workspace credentials are present",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, service.GetWorkspaceStatus(os.Getenv))
		},
	})
	return cmd
}
