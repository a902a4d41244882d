package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"restore/config"
	"restore/internal/client/agent"
	"restore/internal/client/apierror"
	"restore/internal/client/session"
	logs "restore/internal/infra/log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const serviceName = "restore-cli"

// IO bundles the streams a command runs against.
type IO struct {
	In     io.Reader
	InFD   int
	Out    io.Writer
	ErrOut io.Writer
}

// StdIO returns the process streams.
func StdIO() IO {
	return IO{In: os.Stdin, InFD: int(os.Stdin.Fd()), Out: os.Stdout, ErrOut: os.Stderr}
}

type rootFlags struct {
	baseURL   string
	storePath string
	debug     bool
}

// NewRootCommand builds the command tree. loadConfig is called once per run,
// before flags are applied on top of it. The returned func releases the
// session store and must be called once the command has finished.
func NewRootCommand(streams IO, loadConfig func() (*config.ClientConfig, error)) (*cobra.Command, func() error) {
	var (
		flags rootFlags
		app   *App
	)

	root := &cobra.Command{
		Use:           "restore-cli",
		Short:         "Command-line client for the restore accounts API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if flags.baseURL != "" {
				cfg.BaseURL = flags.baseURL
			}
			if flags.storePath != "" {
				cfg.StorePath = flags.storePath
			}
			if flags.debug {
				cfg.Log.Level = "debug"
			}

			logger, err := logs.NewWithWriter(streams.ErrOut, serviceName, cfg.Log)
			if err != nil {
				return err
			}

			app, err = NewApp(cmd.Context(), AppParams{
				Config: cfg,
				Logger: logger,
				In:     streams.In,
				InFD:   streams.InFD,
				Out:    streams.Out,
			})

			return err
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "API base URL (default from client.yaml)")
	root.PersistentFlags().StringVar(&flags.storePath, "store", "", "path of the session database")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log every request")

	appRef := func() *App { return app }
	root.AddCommand(
		newLoginCommand(appRef),
		newRegisterCommand(appRef),
		newWhoamiCommand(appRef),
		newLogoutCommand(appRef),
		newBuggyCommand(appRef),
	)

	closeApp := func() error {
		if app == nil {
			return nil
		}

		return app.Close()
	}

	return root, closeApp
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, streams IO) int {
	root, closeApp := NewRootCommand(streams, config.NewClient)
	defer func() { _ = closeApp() }()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		reportError(streams.ErrOut, err)

		return 1
	}

	return 0
}

// reportError prints what the interceptor left to the caller. Notifications
// and navigations were already shown, so only their status line is added.
func reportError(w io.Writer, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)

		return
	}

	switch apiErr.Action.Effect {
	case apierror.EffectShowFieldErrors:
		_, _ = fmt.Fprintln(w, "Please correct the following:")
		for _, msg := range apiErr.Messages() {
			_, _ = fmt.Fprintf(w, "  - %s\n", msg)
		}
	case apierror.EffectUnclassified:
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
		if len(apiErr.Problem.Raw) > 0 {
			_, _ = fmt.Fprintf(w, "  %s\n", apiErr.Problem.Raw)
		}
	case apierror.EffectNotify, apierror.EffectNavigate:
		_, _ = fmt.Fprintf(w, "Request failed with status %d\n", apiErr.Status)
	}
}

func newLoginCommand(app func() *App) *cobra.Command {
	var userName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			var err error
			if userName == "" {
				if userName, err = promptLine(a.in, "Username", a.out); err != nil {
					return err
				}
			}
			password, err := promptPassword(a.inFD, a.out)
			if err != nil {
				return err
			}

			user, err := a.account.SignIn(ctx, agent.LoginRequest{UserName: userName, Password: password})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.UserName, user.Email)
			if remaining, ok := a.expiresIn(user.Token); ok {
				_, _ = fmt.Fprintf(a.out, "Session expires in %s\n", remaining)
			}

			return nil
		},
	}
	cmd.Flags().StringVarP(&userName, "username", "u", "", "user name (prompted when empty)")

	return cmd
}

func newRegisterCommand(app func() *App) *cobra.Command {
	var userName, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()

			var err error
			if userName == "" {
				if userName, err = promptLine(a.in, "Username", a.out); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = promptLine(a.in, "Email", a.out); err != nil {
					return err
				}
			}
			password, err := promptPassword(a.inFD, a.out)
			if err != nil {
				return err
			}

			err = a.account.Register(cmd.Context(), agent.RegisterRequest{
				UserName: userName,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.out, "Registered %s. Run login to sign in.\n", userName)

			return nil
		},
	}
	cmd.Flags().StringVarP(&userName, "username", "u", "", "user name (prompted when empty)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email (prompted when empty)")

	return cmd
}

func newWhoamiCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"current-user"},
		Short:   "Revalidate the stored session and show the signed-in user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()

			user, err := a.account.FetchCurrentUser(cmd.Context())
			if errors.Is(err, session.ErrNoStoredSession) {
				_, _ = fmt.Fprintln(a.out, "Not signed in")

				return nil
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(a.out, "%s <%s>\n", user.UserName, user.Email)
			if remaining, ok := a.expiresIn(user.Token); ok {
				_, _ = fmt.Fprintf(a.out, "Session expires in %s\n", remaining)
			}

			return nil
		},
	}
}

func newLogoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.account.SignOut(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(a.out, "Signed out")

			return nil
		},
	}
}

var buggyCalls = map[string]func(*agent.TestErrorsAPI, context.Context) error{
	"400":        (*agent.TestErrorsAPI).Get400Error,
	"401":        (*agent.TestErrorsAPI).Get401Error,
	"404":        (*agent.TestErrorsAPI).Get404Error,
	"500":        (*agent.TestErrorsAPI).Get500Error,
	"validation": (*agent.TestErrorsAPI).GetValidationError,
	"admin":      (*agent.TestErrorsAPI).GetAdmin,
}

func newBuggyCommand(app func() *App) *cobra.Command {
	kinds := slices.Sorted(maps.Keys(buggyCalls))

	return &cobra.Command{
		Use:       "buggy <400|401|404|500|validation|admin>",
		Short:     "Call a test endpoint that answers with the given error shape",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			// The admin endpoint needs the stored token in the store.
			if err := a.startup(ctx); err != nil {
				if ctx.Err() != nil {
					return err
				}
				a.logger.Debug("Continuing without a session", slog.Any("error", err))
			}

			if err := buggyCalls[args[0]](a.client.TestErrors, ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(a.out, "OK")

			return nil
		},
	}
}
