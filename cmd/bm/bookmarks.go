package main

import (
	"encoding/json"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/dispatch"
	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/model"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <url> [title]",
		Short: "Add a bookmark",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			in := dispatch.BookmarkInput{URL: args[0], Title: args[0]}
			if len(args) == 2 {
				in.Title = args[1]
			} else if host, err := model.HostOf(args[0]); err == nil {
				in.Title = host
			}
			in.Description, _ = cmd.Flags().GetString("description")
			in.Tags, _ = cmd.Flags().GetStringSlice("tag")
			in.Favorite, _ = cmd.Flags().GetBool("favorite")

			if ref, _ := cmd.Flags().GetString("folder"); ref != "" {
				f, err := resolveFolder(s.engine, ref)
				if err != nil {
					return err
				}
				in.FolderID = &f.ID
			}

			b, err := s.commands.AddBookmark(cmd.Context(), in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Added %s %s\n", shortID(b.ID), b.Title)
			return nil
		}),
	}
	cmd.Flags().StringP("folder", "f", "", "Folder id or title")
	cmd.Flags().StringP("description", "d", "", "Short description")
	cmd.Flags().StringSliceP("tag", "t", nil, "Tag, repeatable or comma separated")
	cmd.Flags().Bool("favorite", false, "Mark as favorite")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List bookmarks",
		Args:    cobra.NoArgs,
		RunE:    withSession(runList),
	}
	cmd.Flags().StringP("folder", "f", "", "Only bookmarks in this folder (id or title)")
	cmd.Flags().StringP("search", "s", "", "Filter by title, url or description")
	cmd.Flags().String("sort", engine.SortDefault.String(), "Sort mode: default, newest, oldest, a-z, z-a, favorites")
	cmd.Flags().Bool("json", false, "Print the bookmarks as JSON")
	return cmd
}

func runList(cmd *cobra.Command, s *session, _ []string) error {
	if ref, _ := cmd.Flags().GetString("folder"); ref != "" {
		f, err := resolveFolder(s.engine, ref)
		if err != nil {
			return err
		}
		s.engine.SetActiveFolder(&f.ID)
	}
	query, _ := cmd.Flags().GetString("search")
	s.engine.SetSearchText(query)

	sortFlag, _ := cmd.Flags().GetString("sort")
	mode, err := engine.ParseSortMode(sortFlag)
	if err != nil {
		return err
	}
	s.engine.SetSortMode(mode)

	view := s.engine.DerivedView()
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(view), "encode bookmarks")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, b := range view {
		star := " "
		if b.Favorite {
			star = "★"
		}
		printf(tw, "%s\t%s %s\t%s\t%s\n", shortID(b.ID), star, b.Title, s.engine.ResolveFolder(b).Title, b.URL)
	}
	return tw.Flush()
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a bookmark",
		Args:  cobra.MinimumNArgs(2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			b, err := resolveBookmark(s.engine, args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			if err := s.commands.RenameBookmark(cmd.Context(), b.ID, title); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Renamed %s to %s\n", shortID(b.ID), strings.TrimSpace(title))
			return nil
		}),
	}
}

func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> [tag...]",
		Short: "Replace the tags of a bookmark; no tags clears them",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			b, err := resolveBookmark(s.engine, args[0])
			if err != nil {
				return err
			}
			tags := model.NormalizeTags(args[1:])
			if err := s.commands.UpdateTags(cmd.Context(), b.ID, tags); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Tagged %s: %s\n", shortID(b.ID), strings.Join(tags, ", "))
			return nil
		}),
	}
}

func newFavCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle the favorite flag of a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			b, err := resolveBookmark(s.engine, args[0])
			if err != nil {
				return err
			}
			fav, err := s.commands.ToggleFavorite(cmd.Context(), b.ID)
			if err != nil {
				return err
			}
			state := "no longer a favorite"
			if fav {
				state = "a favorite"
			}
			printf(cmd.OutOrStdout(), "%s is %s\n", b.Title, state)
			return nil
		}),
	}
}

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <id>... <folder>",
		Short: "Move bookmarks into a folder, creating it if no folder matches",
		Args:  cobra.MinimumNArgs(2),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			refs, folderRef := args[:len(args)-1], args[len(args)-1]

			ids := make([]string, 0, len(refs))
			for _, ref := range refs {
				b, err := resolveBookmark(s.engine, ref)
				if err != nil {
					return err
				}
				ids = append(ids, b.ID)
			}

			var target dispatch.MoveTarget
			if f, err := resolveFolder(s.engine, folderRef); err == nil {
				target.FolderID = &f.ID
			} else {
				target.NewFolderTitle = folderRef
				color, _ := cmd.Flags().GetString("color")
				target.NewFolderColor = model.ColorByName(color)
				if target.NewFolderColor == "" {
					target.NewFolderColor = model.Palette[len(s.engine.Folders())%len(model.Palette)]
				}
			}

			folderID, err := s.commands.MoveToFolder(cmd.Context(), ids, target)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Moved %d bookmark(s) to %s\n", len(ids), shortID(folderID))
			return nil
		}),
	}
	cmd.Flags().String("color", "", "Color of a newly created folder")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete bookmarks by id, or by url with --url",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			out := cmd.OutOrStdout()
			yes, _ := cmd.Flags().GetBool("yes")

			if byURL, _ := cmd.Flags().GetBool("url"); byURL {
				matches := 0
				for _, url := range args {
					for _, b := range s.engine.Snapshot().Bookmarks {
						if b.URL == strings.TrimSpace(url) {
							matches++
						}
					}
				}
				if matches == 0 {
					printf(out, "Deleted 0 bookmark(s)\n")
					return nil
				}
				if !yes && !confirm(cmd, "Delete %d bookmark(s)?", matches) {
					printf(out, "Aborted\n")
					return nil
				}

				total := 0
				for _, url := range args {
					deleted, err := s.commands.DeleteByURL(cmd.Context(), url)
					if err != nil {
						return err
					}
					total += len(deleted)
				}
				printf(out, "Deleted %d bookmark(s)\n", total)
				return nil
			}

			ids := make([]string, 0, len(args))
			for _, ref := range args {
				b, err := resolveBookmark(s.engine, ref)
				if err != nil {
					return err
				}
				ids = append(ids, b.ID)
			}

			if !yes && !confirm(cmd, "Delete %d bookmark(s)?", len(ids)) {
				printf(out, "Aborted\n")
				return nil
			}
			deleted, err := s.commands.DeleteBookmarks(cmd.Context(), ids, true)
			if err != nil {
				return err
			}
			printf(out, "Deleted %d bookmark(s)\n", len(deleted))
			return nil
		}),
	}
	cmd.Flags().Bool("url", false, "Treat arguments as urls and delete every bookmark with that url")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
