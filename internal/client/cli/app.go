// Package cli is the command-line front end of the account client. It stands
// in for the browser UI: notifications print as "!" lines and navigations as "->" lines.
package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"time"

	"restore/config"
	"restore/internal/client/agent"
	"restore/internal/client/session"
	"restore/internal/client/storage"
	"restore/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// App is the composition root of one CLI invocation.
type App struct {
	logger  *slog.Logger
	in      *bufio.Reader
	inFD    int
	out     io.Writer
	console *console
	slots   *storage.SQLiteStore
	store   *session.Store
	client  *agent.Client
	account *session.Account
	now     func() time.Time
}

// AppParams wires an App.
type AppParams struct {
	Config *config.ClientConfig
	Logger *slog.Logger
	In     io.Reader
	InFD   int // terminal descriptor used for password prompts
	Out    io.Writer
}

// NewApp opens the session store and builds the API client around it.
func NewApp(ctx context.Context, params AppParams) (*App, error) {
	slots, err := storage.Open(ctx, params.Config.StorePath)
	if err != nil {
		return nil, err
	}

	out := newConsole(params.Out)
	store := session.NewStore(session.NavigateHome(out))

	client, err := agent.New(agent.Params{
		BaseURL:     params.Config.BaseURL,
		Timeout:     params.Config.Timeout,
		Tokens:      store,
		Interceptor: agent.NewInterceptor(out, out, params.Logger),
		Logger:      params.Logger,
	})
	if err != nil {
		_ = slots.Close()

		return nil, err
	}

	return &App{
		logger:  params.Logger,
		in:      bufio.NewReader(params.In),
		inFD:    params.InFD,
		out:     params.Out,
		console: out,
		slots:   slots,
		store:   store,
		client:  client,
		account: session.NewAccount(session.AccountParams{
			API:      client.Account,
			Slots:    slots,
			Store:    store,
			Notifier: out,
			Logger:   params.Logger,
		}),
		now: time.Now,
	}, nil
}

func (a *App) Close() error {
	return a.slots.Close()
}

// startup revalidates a stored session, the way the UI does when it loads.
// Having no stored session is not an error.
func (a *App) startup(ctx context.Context) error {
	_, err := a.account.FetchCurrentUser(ctx)
	if errors.Is(err, session.ErrNoStoredSession) {
		return nil
	}

	return err
}

// expiresIn reads the exp claim of a token issued by the server. The
// signature is not checked: the server is the only party that verifies tokens.
func (a *App) expiresIn(token string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil || claims.ExpiresAt == nil {
		return "", false
	}

	return util.FormatDuration(claims.ExpiresAt.Sub(a.now())), true
}
