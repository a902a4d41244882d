package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"restore/internal/client/agent"
	"restore/internal/client/storage"

	"github.com/pkg/errors"
)

// SlotKey is the durable slot holding the serialized user and token.
const SlotKey = "user"

// SessionExpiredMessage is shown when a stored session fails revalidation.
const SessionExpiredMessage = "Session expired - please login again"

// ErrNoStoredSession means there was nothing to revalidate, so no request was sent.
var ErrNoStoredSession = errors.New("no stored session")

// Slots is the durable storage behind the session.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// AccountAPI is the subset of the account endpoints the session flows call.
type AccountAPI interface {
	Login(ctx context.Context, req agent.LoginRequest) (*agent.User, error)
	Register(ctx context.Context, req agent.RegisterRequest) error
	CurrentUser(ctx context.Context) (*agent.User, error)
}

// AccountParams wires an Account.
type AccountParams struct {
	API      AccountAPI
	Slots    Slots
	Store    *Store
	Notifier agent.Notifier
	Logger   *slog.Logger
}

// Account runs the sign-in, revalidation and sign-out flows against the Store.
type Account struct {
	api      AccountAPI
	slots    Slots
	store    *Store
	notifier agent.Notifier
	logger   *slog.Logger
}

func NewAccount(params AccountParams) *Account {
	return &Account{
		api:      params.API,
		slots:    params.Slots,
		store:    params.Store,
		notifier: params.Notifier,
		logger:   params.Logger,
	}
}

// SignIn logs in, persists the user and marks the session signed in.
// A rejected login leaves storage and state untouched.
func (a *Account) SignIn(ctx context.Context, req agent.LoginRequest) (*agent.User, error) {
	user, err := a.api.Login(ctx, req)
	if err != nil {
		a.logger.Info("Sign in rejected",
			slog.String("username", req.UserName),
			slog.Any("error", err),
		)

		return nil, err
	}

	if err := a.save(ctx, user); err != nil {
		return nil, err
	}

	a.store.Dispatch(ctx, Event{Kind: EventSignedIn, User: user})

	return user, nil
}

// FetchCurrentUser restores the stored user, then revalidates it with the server.
// The stale user is visible in the Store for the whole round trip. When the
// server rejects it, the user and the stored slot are both cleared.
// If ctx is cancelled mid-flight the request is abandoned and nothing changes.
func (a *Account) FetchCurrentUser(ctx context.Context) (*agent.User, error) {
	stale, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	a.store.Dispatch(ctx, Event{Kind: EventUserRestored, User: stale})

	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "current user revalidation abandoned")
		}

		a.expire(ctx)

		return nil, err
	}

	if err := a.save(ctx, user); err != nil {
		return nil, err
	}

	a.store.Dispatch(ctx, Event{Kind: EventCurrentUserFetched, User: user})

	return user, nil
}

// SignOut clears the session locally. The server is not called.
func (a *Account) SignOut(ctx context.Context) error {
	err := a.slots.Delete(ctx, SlotKey)

	a.store.Dispatch(ctx, Event{Kind: EventSignedOut})

	return errors.Wrap(err, "clear stored session")
}

// Register creates an account without signing in.
func (a *Account) Register(ctx context.Context, req agent.RegisterRequest) error {
	return a.api.Register(ctx, req)
}

func (a *Account) expire(ctx context.Context) {
	if err := a.slots.Delete(ctx, SlotKey); err != nil {
		a.logger.Error("Failed to clear stored session", slog.Any("error", err))
	}

	a.store.Dispatch(ctx, Event{Kind: EventCurrentUserRejected})
	a.notifier.Notify(ctx, SessionExpiredMessage)
}

func (a *Account) load(ctx context.Context) (*agent.User, error) {
	raw, err := a.slots.Get(ctx, SlotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoStoredSession
	}
	if err != nil {
		return nil, errors.Wrap(err, "read stored session")
	}

	var user agent.User
	if err := json.Unmarshal(raw, &user); err != nil || user.Token == "" {
		a.logger.Warn("Discarding unreadable stored session", slog.Any("error", err))
		if delErr := a.slots.Delete(ctx, SlotKey); delErr != nil {
			return nil, errors.Wrap(delErr, "clear unreadable session")
		}

		return nil, ErrNoStoredSession
	}

	return &user, nil
}

func (a *Account) save(ctx context.Context, user *agent.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	return errors.Wrap(a.slots.Set(ctx, SlotKey, raw), "store session")
}
