package main

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/ai"
	"github.com/nikbrunner/bmark/internal/assistant"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/picker"
	"github.com/nikbrunner/bmark/internal/search"
	"github.com/nikbrunner/bmark/internal/selection"
	"github.com/nikbrunner/bmark/internal/stream"
	"github.com/nikbrunner/bmark/internal/tui"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bm [query]",
		Short: "Keyboard driven bookmark manager",
		Long: `bm keeps bookmarks and folders in a local database and shows them in a
live terminal browser. Without arguments the browser opens; with a query
the matching bookmark is looked up and its url printed.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return withSession(runFind)(cmd, args)
			}
			return runTUI(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to the config file (default ~/.config/bm/config.yaml)")
	root.PersistentFlags().String("db", "", "Path to the SQLite database, overrides db_path")
	addFindFlags(root)

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newFindCmd(),
		newRenameCmd(),
		newTagCmd(),
		newFavCmd(),
		newMoveCmd(),
		newRemoveCmd(),
		newFolderCmd(),
		newImportCmd(),
		newExportCmd(),
		newChatCmd(),
		newCullCmd(),
	)
	return root
}

// runTUI opens the interactive browser. The collection reaches the screen
// only through the live subscription; commands issued in the browser write
// to the backend and are reflected once the backend echoes them.
func runTUI(cmd *cobra.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var chat tui.Chat
	if c, err := newChat(s); err == nil {
		chat = c
	} else if !errors.Is(err, ai.ErrNoAPIKey) {
		return err
	}

	app := tui.NewApp(tui.AppParams{
		Context:   ctx,
		Engine:    s.engine,
		Selection: selection.New(),
		Commands:  s.commands,
		Chat:      chat,
		Identity:  s.auth,
		Clipboard: clipboard.WriteAll,
		Language:  s.cfg.Language,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	adapter := stream.New(s.backend, tui.NewSink(s.engine, p.Send), s.log.With(logger.String("component", "stream")))
	events, unsubscribe := s.auth.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := adapter.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("stream stopped", logger.Error(err))
		}
	}()

	_, runErr := p.Run()

	cancel()
	unsubscribe()
	<-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return errors.Wrap(runErr, "run browser")
	}
	return nil
}

// newChat builds the assistant conversation for a session.
func newChat(s *session) (*assistant.Chat, error) {
	client, err := ai.NewClient(ai.Config{
		APIKey:  s.cfg.AnthropicAPIKey,
		URL:     s.cfg.CompletionURL,
		Model:   s.cfg.CompletionModel,
		Timeout: s.cfg.CompletionTimeout,
	}, s.log.With(logger.String("component", "ai")))
	if err != nil {
		return nil, err
	}

	extractor := assistant.NewExtractor(s.commands, s.engine, s.auth,
		s.log.With(logger.String("component", "assistant")))
	return assistant.NewChat(client, extractor,
		assistant.WithSnapshot(s.engine.Snapshot),
		assistant.WithLanguage(s.cfg.Language),
		assistant.WithChatLogger(s.log.With(logger.String("component", "chat"))),
	), nil
}

func addFindFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("copy", false, "Copy the url to the clipboard instead of printing it")
	cmd.Flags().Bool("open", false, "Open the url in the default browser")
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy find a bookmark and print its url",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withSession(runFind),
	}
	addFindFlags(cmd)
	return cmd
}

// runFind looks up a bookmark by fuzzy title match. A single match is used
// directly; several open a picker.
func runFind(cmd *cobra.Command, s *session, args []string) error {
	query := strings.Join(args, " ")
	results := search.Find(s.engine.Snapshot().Bookmarks, query)

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		printf(out, "No bookmarks found for '%s'\n", query)
		return nil
	}

	chosen := results[0].Bookmark
	if len(results) > 1 {
		program := tea.NewProgram(picker.New(results, query), tea.WithContext(cmd.Context()))
		final, err := program.Run()
		if err != nil {
			return errors.Wrap(err, "run picker")
		}
		var ok bool
		if chosen, ok = final.(picker.Picker).SelectedBookmark(); !ok {
			return nil
		}
	}

	copyURL, _ := cmd.Flags().GetBool("copy")
	open, _ := cmd.Flags().GetBool("open")
	switch {
	case copyURL:
		if err := clipboard.WriteAll(chosen.URL); err != nil {
			return errors.Wrap(err, "copy url")
		}
		printf(out, "Copied: %s\n", chosen.URL)
	case open:
		printf(out, "Opening: %s\n", chosen.Title)
		return openURL(chosen.URL)
	default:
		printf(out, "%s\n", chosen.URL)
	}
	return nil
}
