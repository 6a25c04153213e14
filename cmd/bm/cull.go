package main

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/culler"
	"github.com/nikbrunner/bmark/internal/logger"
)

func newCullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cull",
		Short: "Check every bookmark url and offer to delete the dead ones",
		Args:  cobra.NoArgs,
		RunE:  withSession(runCull),
	}
	cmd.Flags().BoolP("yes", "y", false, "Delete dead bookmarks without asking")
	cmd.Flags().Bool("dry-run", false, "Only report, never delete")
	cmd.Flags().BoolP("verbose", "v", false, "List unreachable bookmarks too")
	return cmd
}

func runCull(cmd *cobra.Command, s *session, _ []string) error {
	bookmarks := s.engine.Snapshot().Bookmarks
	out := cmd.OutOrStdout()
	if len(bookmarks) == 0 {
		printf(out, "No bookmarks to check\n")
		return nil
	}

	checker := culler.New(culler.Options{
		Concurrency:    s.cfg.CullConcurrency,
		Timeout:        s.cfg.CullTimeout,
		ExcludeDomains: s.cfg.CullExcludeDomains,
	}, s.log.With(logger.String("component", "culler")))

	errOut := cmd.ErrOrStderr()
	results := checker.Check(cmd.Context(), bookmarks, func(completed, total int) {
		printf(errOut, "\rChecking %d/%d", completed, total)
	})
	printf(errOut, "\n")

	counts := culler.Count(results)
	printf(out, "%d healthy, %d dead, %d unreachable\n",
		counts[culler.Healthy], counts[culler.Dead], counts[culler.Unreachable])

	verbose, _ := cmd.Flags().GetBool("verbose")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		switch {
		case r.Status == culler.Dead:
			printf(tw, "dead\t%d\t%s\t%s\n", r.StatusCode, r.Bookmark.Title, r.Bookmark.URL)
		case r.Status == culler.Unreachable && verbose:
			printf(tw, "unreachable\t%s\t%s\t%s\n", r.Error, r.Bookmark.Title, r.Bookmark.URL)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	dead := culler.DeadIDs(results)
	if len(dead) == 0 {
		return nil
	}
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return nil
	}
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(cmd, "Delete %d dead bookmark(s)?", len(dead)) {
		printf(out, "Aborted\n")
		return nil
	}

	deleted, err := s.commands.DeleteBookmarks(cmd.Context(), dead, true)
	if err != nil {
		return err
	}
	printf(out, "Deleted %d bookmark(s)\n", len(deleted))
	return nil
}
