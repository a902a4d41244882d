package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ServerErrorPath is the view a 500 response navigates to.
const ServerErrorPath = "/server-error"

const (
	defaultBadRequestTitle   = "Bad Request"
	defaultUnauthorizedTitle = "unauthorized"
)

// Effect is the user-facing reaction chosen for a failed response.
type Effect int

const (
	EffectUnclassified Effect = iota
	EffectShowFieldErrors
	EffectNotify
	EffectNavigate
)

func (e Effect) String() string {
	switch e {
	case EffectShowFieldErrors:
		return "show_field_errors"
	case EffectNotify:
		return "notify"
	case EffectNavigate:
		return "navigate"
	default:
		return "unclassified"
	}
}

// Action describes what the caller must do about a failed response.
// Only the fields relevant to Effect are set.
type Action struct {
	Effect   Effect
	Messages []string        // EffectShowFieldErrors
	Notice   string          // EffectNotify
	Path     string          // EffectNavigate
	State    json.RawMessage // EffectNavigate, the raw server payload
}

// Classify maps a failed status and its decoded body to exactly one action.
// It has no side effects, so calling it twice on the same input gives equal results.
func Classify(status int, problem Problem) Action {
	switch status {
	case http.StatusBadRequest:
		if problem.Kind == KindFieldErrors {
			return Action{
				Effect:   EffectShowFieldErrors,
				Messages: append([]string(nil), problem.Messages...),
			}
		}

		return Action{Effect: EffectNotify, Notice: titleOr(problem, defaultBadRequestTitle)}
	case http.StatusUnauthorized:
		return Action{Effect: EffectNotify, Notice: titleOr(problem, defaultUnauthorizedTitle)}
	case http.StatusInternalServerError:
		return Action{
			Effect: EffectNavigate,
			Path:   ServerErrorPath,
			State:  append(json.RawMessage(nil), problem.Raw...),
		}
	default:
		return Action{Effect: EffectUnclassified}
	}
}

func titleOr(problem Problem, fallback string) string {
	if problem.Title != "" {
		return problem.Title
	}

	return fallback
}

// Sentinels for errors.Is checks against *Error.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServerFault  = errors.New("server fault")
)

// Error is returned for every failed response, after its action was performed.
type Error struct {
	Status  int
	Problem Problem
	Action  Action
}

// New decodes body and classifies it.
func New(status int, body []byte) *Error {
	problem := DecodeProblem(body)

	return &Error{
		Status:  status,
		Problem: problem,
		Action:  Classify(status, problem),
	}
}

func (e *Error) Error() string {
	switch {
	case e.Problem.Kind == KindFieldErrors:
		return fmt.Sprintf("status %d: %d validation error(s)", e.Status, len(e.Problem.Messages))
	case e.Problem.Title != "":
		return fmt.Sprintf("status %d: %s", e.Status, e.Problem.Title)
	default:
		return fmt.Sprintf("status %d", e.Status)
	}
}

// Messages returns the flattened field messages for a validation failure.
func (e *Error) Messages() []string {
	return e.Action.Messages
}

// Is matches the status-level sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServerFault:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}
