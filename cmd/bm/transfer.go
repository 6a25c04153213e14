package main

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/exporter"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bookmarks from a browser export or JSON",
	}

	html := &cobra.Command{
		Use:   "html <file>",
		Short: "Import a Netscape bookmark file as exported by browsers",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open import file")
			}
			defer file.Close()

			res, err := s.commands.ImportHTML(cmd.Context(), file)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Imported %d bookmarks, %d new folders", res.Added, res.FoldersCreated)
			if res.Skipped > 0 {
				printf(cmd.OutOrStdout(), " (%d duplicates skipped)", res.Skipped)
			}
			if res.Invalid > 0 {
				printf(cmd.OutOrStdout(), " (%d invalid skipped)", res.Invalid)
			}
			printf(cmd.OutOrStdout(), "\n")
			return nil
		}),
	}

	json := &cobra.Command{
		Use:   "json <file|->",
		Short: "Import one bookmark object or an array of them",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			var (
				payload []byte
				err     error
			)
			if args[0] == "-" {
				payload, err = io.ReadAll(cmd.InOrStdin())
			} else {
				payload, err = os.ReadFile(args[0])
			}
			if err != nil {
				return errors.Wrap(err, "read import file")
			}

			var folderID *string
			if ref, _ := cmd.Flags().GetString("folder"); ref != "" {
				f, err := resolveFolder(s.engine, ref)
				if err != nil {
					return err
				}
				folderID = &f.ID
			}

			created, err := s.commands.ImportJSON(cmd.Context(), payload, folderID)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Imported %d bookmarks\n", len(created))
			return nil
		}),
	}
	json.Flags().StringP("folder", "f", "", "Folder for entries that name none (id or title)")

	cmd.AddCommand(html, json)
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks as Netscape HTML (default ~/Downloads/bookmarks-export-DATE.html)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				if outputPath, err = exporter.DefaultExportPath(time.Now()); err != nil {
					return errors.Wrap(err, "default export path")
				}
			}

			snap := s.engine.Snapshot()
			if outputPath == "-" {
				return exporter.WriteHTML(cmd.OutOrStdout(), snap)
			}

			file, err := os.Create(outputPath)
			if err != nil {
				return errors.Wrap(err, "create export file")
			}
			if err := exporter.WriteHTML(file, snap); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return errors.Wrap(err, "write export file")
			}

			printf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n",
				len(snap.Bookmarks), len(snap.Folders), outputPath)
			return nil
		}),
	}
}
