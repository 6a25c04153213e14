package auth_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmark/internal/auth"
)

func TestLocal_SignInOut(t *testing.T) {
	l := auth.NewLocal()

	_, ok := l.Current()
	assert.Assert(t, !ok)

	assert.ErrorIs(t, l.SignIn(auth.Identity{UID: "  "}), auth.ErrNoUserID)

	assert.NilError(t, l.SignIn(auth.Identity{UID: "u1", Name: "Nik"}))
	id, ok := l.Current()
	assert.Assert(t, ok)
	assert.Equal(t, id.Name, "Nik")
	assert.Equal(t, l.UID(), "u1")

	l.SignOut()
	assert.Equal(t, l.UID(), "")
}

func TestLocal_SubscribeDeliversCurrentThenLatest(t *testing.T) {
	l := auth.NewLocal()
	assert.NilError(t, l.SignIn(auth.Identity{UID: "u1"}))

	events, cancel := l.Subscribe()
	defer cancel()

	first := <-events
	assert.Assert(t, first.SignedIn())
	assert.Equal(t, first.Identity.UID, "u1")

	// Two changes without a read collapse to the latest.
	l.SignOut()
	assert.NilError(t, l.SignIn(auth.Identity{UID: "u2"}))

	latest := <-events
	assert.Equal(t, latest.Identity.UID, "u2")
}

func TestLocal_CancelClosesChannel(t *testing.T) {
	l := auth.NewLocal()
	events, cancel := l.Subscribe()
	<-events

	cancel()
	cancel()

	_, open := <-events
	assert.Assert(t, !open)
}
