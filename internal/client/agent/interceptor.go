// Package agent is the typed HTTP client for the account API. Every failed
// response passes through a single Interceptor before reaching the caller.
package agent

import (
	"context"
	"encoding/json"
	"log/slog"

	"restore/internal/client/apierror"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Navigator moves the user to another view, handing over state for it to display.
type Navigator interface {
	Navigate(ctx context.Context, path string, state json.RawMessage)
}

// Interceptor turns failed responses into user-facing effects.
type Interceptor struct {
	notifier  Notifier
	navigator Navigator
	logger    *slog.Logger
}

// NewInterceptor wires the effect sinks used for classified failures.
func NewInterceptor(notifier Notifier, navigator Navigator, logger *slog.Logger) *Interceptor {
	return &Interceptor{
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
	}
}

// Handle classifies a failed response, performs the chosen effect and returns
// the classified error. It never returns nil.
func (i *Interceptor) Handle(ctx context.Context, status int, body []byte) error {
	apiErr := apierror.New(status, body)

	switch apiErr.Action.Effect {
	case apierror.EffectNotify:
		i.notifier.Notify(ctx, apiErr.Action.Notice)
	case apierror.EffectNavigate:
		i.navigator.Navigate(ctx, apiErr.Action.Path, apiErr.Action.State)
	case apierror.EffectShowFieldErrors, apierror.EffectUnclassified:
		// Left to the caller.
	}

	i.logger.Debug("API request failed",
		slog.Int("status", status),
		slog.String("effect", apiErr.Action.Effect.String()),
		slog.String("kind", apiErr.Problem.Kind.String()),
	)

	return apiErr
}
