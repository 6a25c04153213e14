package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/bmark/internal/ai"
	"github.com/nikbrunner/bmark/internal/apperr"
	"github.com/nikbrunner/bmark/internal/i18n"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
)

// Sender identifies who wrote a transcript entry.
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
	SenderSystem // notices about applied actions and failures
)

// Entry is one line of the chat transcript.
type Entry struct {
	Sender Sender
	Text   string
	Time   time.Time
}

// Chat keeps a conversation with the completion API and applies the
// actions embedded in its replies.
type Chat struct {
	completer ai.Completer
	extractor *Extractor
	snapshot  func() *model.Snapshot
	lang      string
	now       func() time.Time
	log       logger.Logger

	mu      sync.Mutex
	entries []Entry
}

// ChatOption customizes a Chat.
type ChatOption func(*Chat)

// WithSnapshot supplies the collection described to the assistant on each
// turn.
func WithSnapshot(fn func() *model.Snapshot) ChatOption {
	return func(c *Chat) { c.snapshot = fn }
}

// WithLanguage sets the language of sender labels and notices.
func WithLanguage(lang string) ChatOption {
	return func(c *Chat) { c.lang = lang }
}

// WithClock overrides the clock used for entry timestamps.
func WithClock(now func() time.Time) ChatOption {
	return func(c *Chat) { c.now = now }
}

// WithChatLogger sets the chat logger.
func WithChatLogger(l logger.Logger) ChatOption {
	return func(c *Chat) { c.log = l }
}

// NewChat creates an empty conversation.
func NewChat(completer ai.Completer, extractor *Extractor, opts ...ChatOption) *Chat {
	c := &Chat{
		completer: completer,
		extractor: extractor,
		snapshot:  model.NewSnapshot,
		lang:      i18n.DefaultLanguage,
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send adds the user's message, asks the completion API for a reply, keeps
// the reply verbatim and applies any action it carries. A completion
// failure is recorded as a notice and returned; no action is applied then.
func (c *Chat) Send(ctx context.Context, text string) (Outcome, error) {
	const op = "chat"
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, apperr.New(apperr.Validation, op, "message is empty")
	}

	history := c.history()
	c.append(SenderUser, text)

	system := ai.SystemPrompt(ai.BuildContext(c.snapshot()))
	reply, err := c.completer.Complete(ctx, system, history, text)
	if err != nil {
		kind := apperr.BackendRejected
		if errors.Is(err, context.DeadlineExceeded) {
			kind = apperr.Timeout
		}
		c.log.Warn("completion failed", logger.Error(err))
		c.append(SenderSystem, i18n.Textf(i18n.ChatError, c.lang, err.Error()))
		return Outcome{}, apperr.Wrap(kind, op, err)
	}
	c.append(SenderAssistant, reply)

	outcome, err := c.extractor.Handle(ctx, reply)
	if err != nil {
		c.append(SenderSystem, i18n.Textf(i18n.ChatError, c.lang, err.Error()))
		return outcome, err
	}
	if notice := c.notice(outcome); notice != "" {
		c.append(SenderSystem, notice)
	}
	return outcome, nil
}

func (c *Chat) notice(o Outcome) string {
	switch o.Kind {
	case OutcomeAdded:
		return i18n.Textf(i18n.ChatAdded, c.lang, o.Added.Title)
	case OutcomeDeleted:
		if len(o.DeletedIDs) == 0 {
			return i18n.Text(i18n.ChatDeletedNone, c.lang)
		}
		return i18n.Textf(i18n.ChatDeleted, c.lang, len(o.DeletedIDs))
	case OutcomeUnknownAction:
		return i18n.Textf(i18n.ChatUnknownAction, c.lang, o.Action)
	case OutcomeParseFailed:
		return i18n.Text(i18n.ChatParseFailed, c.lang)
	default:
		return ""
	}
}

// history returns the user and assistant turns so far.
func (c *Chat) history() []ai.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]ai.Message, 0, len(c.entries))
	for _, e := range c.entries {
		switch e.Sender {
		case SenderUser:
			msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: e.Text})
		case SenderAssistant:
			msgs = append(msgs, ai.Message{Role: ai.RoleAssistant, Content: e.Text})
		}
	}
	return msgs
}

func (c *Chat) append(sender Sender, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Sender: sender, Text: text, Time: c.now()})
}

// Entries returns a copy of the transcript.
func (c *Chat) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clear empties the transcript.
func (c *Chat) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// SenderLabel returns the display name of s.
func (c *Chat) SenderLabel(s Sender) string {
	switch s {
	case SenderUser:
		return i18n.Text(i18n.SenderUser, c.lang)
	case SenderAssistant:
		return i18n.Text(i18n.SenderAssistant, c.lang)
	default:
		return i18n.Text(i18n.SenderSystem, c.lang)
	}
}

// Export renders the transcript as "[timestamp] Sender: message" lines.
func (c *Chat) Export() string {
	entries := c.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("[%s] %s: %s", e.Time.Format(time.RFC3339), c.SenderLabel(e.Sender), e.Text)
	}
	return strings.Join(lines, "\n")
}
