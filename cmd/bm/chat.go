package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmark/internal/ai"
	"github.com/nikbrunner/bmark/internal/assistant"
	"github.com/nikbrunner/bmark/internal/logger"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the bookmark assistant",
		Long: `Sends one message, or reads messages line by line when none is given.
In the interactive loop "/clear" empties the conversation and
"/export <file>" writes the transcript.`,
		RunE: withSession(runChat),
	}
	cmd.Flags().String("transcript", "", "Write the transcript to this file when done")
	return cmd
}

func runChat(cmd *cobra.Command, s *session, args []string) error {
	chat, err := newChat(s)
	if errors.Is(err, ai.ErrNoAPIKey) {
		return errors.New("assistant is not configured: set anthropic_api_key or ANTHROPIC_API_KEY")
	}
	if err != nil {
		return err
	}

	r := &chatRunner{cmd: cmd, s: s, chat: chat}
	if len(args) > 0 {
		r.send(strings.Join(args, " "))
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if !r.handle(scanner.Text()) {
				break
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrap(err, "read input")
		}
	}

	if path, _ := cmd.Flags().GetString("transcript"); path != "" {
		return writeTranscript(chat, path)
	}
	return nil
}

type chatRunner struct {
	cmd     *cobra.Command
	s       *session
	chat    *assistant.Chat
	printed int
}

// handle processes one input line and reports whether to keep reading.
func (r *chatRunner) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case line == "/quit" || line == "/exit":
		return false
	case line == "/clear":
		r.chat.Clear()
		r.printed = 0
		return true
	case strings.HasPrefix(line, "/export"):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/export"))
		if path == "" {
			printf(r.cmd.ErrOrStderr(), "usage: /export <file>\n")
		} else if err := writeTranscript(r.chat, path); err != nil {
			printf(r.cmd.ErrOrStderr(), "%v\n", err)
		}
		return true
	}
	r.send(line)
	return true
}

// send passes one message to the assistant, prints the new transcript
// entries and refreshes the collection the assistant sees next turn.
func (r *chatRunner) send(text string) {
	ctx := r.cmd.Context()
	if _, err := r.chat.Send(ctx, text); err != nil {
		r.s.log.Debug("chat turn failed", logger.Error(err))
	}

	entries := r.chat.Entries()
	out := r.cmd.OutOrStdout()
	for _, e := range entries[r.printed:] {
		if e.Sender == assistant.SenderUser {
			continue
		}
		printf(out, "%s: %s\n", r.chat.SenderLabel(e.Sender), e.Text)
	}
	r.printed = len(entries)

	if err := r.s.load(ctx); err != nil {
		r.s.log.Warn("reload collection", logger.Error(err))
	}
}

func writeTranscript(chat *assistant.Chat, path string) error {
	return errors.Wrap(os.WriteFile(path, []byte(chat.Export()+"\n"), 0o644), "write transcript")
}
