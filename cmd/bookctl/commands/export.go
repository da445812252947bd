package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/service"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/store"
)

func exportCmd() *cobra.Command {
	var (
		outDir string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "export <html|print|epub-json|epub> <book.json>",
		Short: "Render a book into a distributable format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := readBook(args[1])
			if err != nil {
				return err
			}

			var recorder service.ExportRecorder
			if dbPath != "" {
				db, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				repo := store.NewExportRepo(db)
				defer repo.Close()
				recorder = repo
			}

			svc := service.NewExportService(recorder, nil, nil)
			out, err := svc.Export(cmd.Context(), book, service.ExportRequest{
				Format: args[0],
				Pretty: pretty,
			})
			if err != nil {
				var verr *service.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("book is not ready for export:\n  - %s", strings.Join(verr.Errors, "\n  - "))
				}
				return err
			}

			path := filepath.Join(outDir, out.Result.Filename)
			if err := os.WriteFile(path, out.Result.Content, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(out.Result.Content))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "re-indent HTML output")
	return cmd
}
