package apierror

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validationBody = `{
	"title": "One or more validation errors occurred.",
	"status": 400,
	"errors": {
		"Password": ["Passwords must have at least one digit ('0'-'9').", "Passwords must have at least one uppercase ('A'-'Z')."],
		"DuplicateUserName": ["Username 'bob' is already taken."],
		"Email": null
	}
}`

func TestDecodeProblem_FlattensFieldErrorsInDocumentOrder(t *testing.T) {
	problem := DecodeProblem([]byte(validationBody))

	assert.Equal(t, KindFieldErrors, problem.Kind)
	assert.Equal(t, "One or more validation errors occurred.", problem.Title)
	assert.Equal(t, []string{
		"Passwords must have at least one digit ('0'-'9').",
		"Passwords must have at least one uppercase ('A'-'Z').",
		"Username 'bob' is already taken.",
	}, problem.Messages)
	assert.JSONEq(t, validationBody, string(problem.Raw))
}

func TestDecodeProblem_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		kind     Kind
		title    string
		messages []string
	}{
		{name: "titled problem", body: `{"title":"invalid credentials","status":401}`, kind: KindMessage, title: "invalid credentials"},
		{name: "bare string field", body: `{"errors":{"a":"one","b":["two"]}}`, kind: KindFieldErrors, messages: []string{"one", "two"}},
		{name: "empty errors object", body: `{"errors":{}}`, kind: KindFieldErrors, messages: []string{}},
		{name: "errors not an object", body: `{"title":"x","errors":["a"]}`, kind: KindMessage, title: "x"},
		{name: "server fault", body: `{"statusCode":500,"message":"db down"}`, kind: KindOpaque},
		{name: "not json", body: `<html>oops</html>`, kind: KindOpaque},
		{name: "empty body", body: ``, kind: KindOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := DecodeProblem([]byte(tt.body))

			assert.Equal(t, tt.kind, problem.Kind)
			assert.Equal(t, tt.title, problem.Title)
			assert.Equal(t, tt.messages, problem.Messages)
			assert.Equal(t, tt.body, string(problem.Raw))
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	body := []byte(validationBody)

	first := Classify(http.StatusBadRequest, DecodeProblem(body))
	second := Classify(http.StatusBadRequest, DecodeProblem(body))

	assert.Equal(t, EffectShowFieldErrors, first.Effect)
	assert.Equal(t, first, second)

	first.Messages[0] = "mutated"
	problem := DecodeProblem(body)
	assert.NotEqual(t, "mutated", Classify(http.StatusBadRequest, problem).Messages[0])
}

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Action
	}{
		{
			name:   "400 with title notifies",
			status: http.StatusBadRequest,
			body:   `{"title":"invalid credentials"}`,
			want:   Action{Effect: EffectNotify, Notice: "invalid credentials"},
		},
		{
			name:   "400 without title falls back",
			status: http.StatusBadRequest,
			body:   `{}`,
			want:   Action{Effect: EffectNotify, Notice: "Bad Request"},
		},
		{
			name:   "401 uses server title",
			status: http.StatusUnauthorized,
			body:   `{"title":"Unauthorized"}`,
			want:   Action{Effect: EffectNotify, Notice: "Unauthorized"},
		},
		{
			name:   "401 without body",
			status: http.StatusUnauthorized,
			body:   ``,
			want:   Action{Effect: EffectNotify, Notice: "unauthorized"},
		},
		{
			name:   "404 is unclassified",
			status: http.StatusNotFound,
			body:   `{"title":"Not Found"}`,
			want:   Action{Effect: EffectUnclassified},
		},
		{
			name:   "403 is unclassified",
			status: http.StatusForbidden,
			body:   `{"title":"Forbidden"}`,
			want:   Action{Effect: EffectUnclassified},
		},
		{
			name:   "502 is unclassified",
			status: http.StatusBadGateway,
			body:   `bad gateway`,
			want:   Action{Effect: EffectUnclassified},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, DecodeProblem([]byte(tt.body))))
		})
	}
}

func TestClassify_ServerFaultNavigatesWithPayload(t *testing.T) {
	body := `{"message": "db down"}`

	action := Classify(http.StatusInternalServerError, DecodeProblem([]byte(body)))

	assert.Equal(t, EffectNavigate, action.Effect)
	assert.Equal(t, ServerErrorPath, action.Path)
	assert.Equal(t, body, string(action.State))
	assert.Empty(t, action.Notice)
}

func TestError_MatchesSentinels(t *testing.T) {
	err := New(http.StatusUnauthorized, []byte(`{"title":"Unauthorized"}`))

	var wrapped error = errors.Wrap(err, "current user")
	assert.True(t, errors.Is(wrapped, ErrUnauthorized))
	assert.False(t, errors.Is(wrapped, ErrBadRequest))
	assert.Equal(t, "status 401: Unauthorized", err.Error())

	var apiErr *Error
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, EffectNotify, apiErr.Action.Effect)

	fault := New(http.StatusServiceUnavailable, nil)
	assert.True(t, errors.Is(fault, ErrServerFault))
	assert.Equal(t, "status 503", fault.Error())

	validation := New(http.StatusBadRequest, []byte(`{"errors":{"Problem1":["a"],"Problem2":["b"]}}`))
	assert.Equal(t, []string{"a", "b"}, validation.Messages())
	assert.Equal(t, "status 400: 2 validation error(s)", validation.Error())
}
