package auth

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoUserID is returned when signing in without a user identifier.
var ErrNoUserID = errors.New("identity has no user id")

// Identity is an authenticated user and their display profile.
type Identity struct {
	UID      string
	Name     string
	Email    string
	PhotoURL string
}

// Event reports a session change. A nil Identity means signed out.
type Event struct {
	Identity *Identity
}

// SignedIn reports whether the event starts a session.
func (e Event) SignedIn() bool {
	return e.Identity != nil && e.Identity.UID != ""
}

// Provider supplies the current identity and session change events.
type Provider interface {
	Current() (Identity, bool)
	Subscribe() (<-chan Event, func())
}

// Local is an in-process identity provider. The CLI signs in from
// configuration; tests drive it directly.
type Local struct {
	mu      sync.Mutex
	current *Identity
	nextID  int
	subs    map[int]chan Event
}

// NewLocal creates a signed-out provider.
func NewLocal() *Local {
	return &Local{subs: make(map[int]chan Event)}
}

// Current returns the signed-in identity, if any.
func (l *Local) Current() (Identity, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Identity{}, false
	}
	return *l.current, true
}

// UID returns the signed-in user id or "".
func (l *Local) UID() string {
	id, _ := l.Current()
	return id.UID
}

// SignIn starts a session for id and notifies subscribers.
func (l *Local) SignIn(id Identity) error {
	id.UID = strings.TrimSpace(id.UID)
	if id.UID == "" {
		return ErrNoUserID
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &id
	l.broadcast(Event{Identity: &id})
	return nil
}

// SignOut ends the session and notifies subscribers.
func (l *Local) SignOut() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return
	}
	l.current = nil
	l.broadcast(Event{})
}

// Subscribe returns a channel receiving the current state followed by every
// change. Slow readers only ever see the latest state.
func (l *Local) Subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, 1)
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	ch <- Event{Identity: l.current}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
			close(ch)
		})
	}
}

// broadcast must be called with l.mu held.
func (l *Local) broadcast(ev Event) {
	for _, ch := range l.subs {
		// Replace any unread event so the reader sees the latest state.
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
}
