package main

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/model"
)

func newFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			color, _ := cmd.Flags().GetString("color")
			if color == "" {
				color = model.Palette[len(s.engine.Folders())%len(model.Palette)]
			} else {
				color = model.ColorByName(color)
			}
			f, err := s.commands.CreateFolder(cmd.Context(), strings.Join(args, " "), color)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Created folder %s %s\n", shortID(f.ID), f.Title)
			return nil
		}),
	}
	add.Flags().String("color", "", "Palette color name or hex value")

	rm := &cobra.Command{
		Use:   "rm <folder>",
		Short: "Delete a folder; its bookmarks move to Other",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			f, err := resolveFolder(s.engine, args[0])
			if err != nil {
				return err
			}
			if err := s.commands.DeleteFolder(cmd.Context(), f.ID); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Deleted folder %s\n", f.Title)
			return nil
		}),
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List folders with their bookmark counts",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, s *session, _ []string) error {
			counts := s.engine.CountByFolder()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range s.engine.Folders() {
				printf(tw, "%s\t%s\t%s\t%d\n", shortID(f.ID), f.Title, model.ColorName(f.Color), counts[f.ID])
			}
			if n := counts[""]; n > 0 {
				printf(tw, "\t%s\t\t%d\n", model.OtherTitle, n)
			}
			return tw.Flush()
		}),
	}

	cmd.AddCommand(add, rm, ls)
	return cmd
}
