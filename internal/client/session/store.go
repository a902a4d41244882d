// Package session owns the client's signed-in user: an in-memory Store driven
// by a pure reducer, and the Account flows that keep it in step with durable storage.
package session

import (
	"context"
	"slices"
	"sync"

	"restore/internal/client/agent"
)

// HomePath is where the user lands after signing out or losing the session.
const HomePath = "/"

type EventKind int

const (
	// EventUserRestored loads the stored user before it is revalidated.
	EventUserRestored EventKind = iota + 1
	EventSignedIn
	EventCurrentUserFetched
	// EventCurrentUserRejected retracts a restored user the server no longer accepts.
	EventCurrentUserRejected
	EventSignedOut
)

func (k EventKind) String() string {
	switch k {
	case EventUserRestored:
		return "user_restored"
	case EventSignedIn:
		return "signed_in"
	case EventCurrentUserFetched:
		return "current_user_fetched"
	case EventCurrentUserRejected:
		return "current_user_rejected"
	case EventSignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Event is a state transition request. User is set for the events that carry one.
type Event struct {
	Kind EventKind
	User *agent.User
}

// State is the client-side session.
type State struct {
	User *agent.User
}

// SignedIn reports whether a user, possibly not yet revalidated, is present.
func (s State) SignedIn() bool {
	return s.User != nil
}

// Reduce applies event to state and returns the new state. It has no side effects.
func Reduce(state State, event Event) State {
	switch event.Kind {
	case EventUserRestored, EventSignedIn, EventCurrentUserFetched:
		return State{User: cloneUser(event.User)}
	case EventCurrentUserRejected, EventSignedOut:
		return State{}
	default:
		return state
	}
}

func cloneUser(u *agent.User) *agent.User {
	if u == nil {
		return nil
	}
	c := *u

	return &c
}

// Observer reacts to a completed transition. It runs outside the store lock.
type Observer func(ctx context.Context, event Event, next State)

// Store holds the current State. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     State
	observers []Observer
}

func NewStore(observers ...Observer) *Store {
	return &Store{observers: observers}
}

// Subscribe registers an observer for subsequent transitions.
func (s *Store) Subscribe(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, observer)
}

// Dispatch reduces event into the store, then notifies observers.
func (s *Store) Dispatch(ctx context.Context, event Event) State {
	s.mu.Lock()
	next := Reduce(s.state, event)
	s.state = next
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, observe := range observers {
		observe(ctx, event, next)
	}

	return next
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{User: cloneUser(s.state.User)}
}

// Token returns the bearer token of the current user, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.User == nil {
		return ""
	}

	return s.state.User.Token
}

// NavigateHome sends the user to HomePath whenever the session ends.
func NavigateHome(navigator agent.Navigator) Observer {
	return func(ctx context.Context, event Event, _ State) {
		switch event.Kind {
		case EventSignedOut, EventCurrentUserRejected:
			navigator.Navigate(ctx, HomePath, nil)
		case EventUserRestored, EventSignedIn, EventCurrentUserFetched:
		}
	}
}
