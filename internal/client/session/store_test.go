package session

import (
	"context"
	"testing"

	"restore/internal/client/agent"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	user := &agent.User{UserName: "alice", Token: "t"}
	signedIn := State{User: user}

	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{name: "restore", state: State{}, event: Event{Kind: EventUserRestored, User: user}, want: signedIn},
		{name: "sign in", state: State{}, event: Event{Kind: EventSignedIn, User: user}, want: signedIn},
		{name: "fetched", state: State{}, event: Event{Kind: EventCurrentUserFetched, User: user}, want: signedIn},
		{name: "rejected", state: signedIn, event: Event{Kind: EventCurrentUserRejected}, want: State{}},
		{name: "sign out", state: signedIn, event: Event{Kind: EventSignedOut}, want: State{}},
		{name: "unknown keeps state", state: signedIn, event: Event{}, want: signedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.event))
		})
	}
}

func TestReduce_CopiesUser(t *testing.T) {
	user := &agent.User{UserName: "alice", Token: "t"}

	next := Reduce(State{}, Event{Kind: EventSignedIn, User: user})
	user.Token = "changed"

	assert.Equal(t, "t", next.User.Token)
}

func TestStore_ObserversRunAfterTransition(t *testing.T) {
	store := NewStore()

	var seen []string
	store.Subscribe(func(_ context.Context, event Event, next State) {
		// Reading back through the store proves the lock is released.
		assert.Equal(t, next, store.State())
		seen = append(seen, event.Kind.String())
	})

	store.Dispatch(context.Background(), Event{Kind: EventSignedIn, User: &agent.User{Token: "t"}})
	assert.Equal(t, "t", store.Token())

	store.Dispatch(context.Background(), Event{Kind: EventSignedOut})
	assert.Empty(t, store.Token())

	assert.Equal(t, []string{"signed_in", "signed_out"}, seen)
}

func TestNavigateHome_OnlyWhenSessionEnds(t *testing.T) {
	nav := &effects{}
	store := NewStore(NavigateHome(nav))
	ctx := context.Background()
	user := &agent.User{Token: "t"}

	store.Dispatch(ctx, Event{Kind: EventUserRestored, User: user})
	store.Dispatch(ctx, Event{Kind: EventSignedIn, User: user})
	store.Dispatch(ctx, Event{Kind: EventCurrentUserFetched, User: user})
	assert.Empty(t, nav.paths)

	store.Dispatch(ctx, Event{Kind: EventCurrentUserRejected})
	store.Dispatch(ctx, Event{Kind: EventSignedOut})
	assert.Equal(t, []string{HomePath, HomePath}, nav.paths)
}
