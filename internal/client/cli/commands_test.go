package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"restore/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPassword(t *testing.T, password string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPassword = orig })
}

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "9b2f6c1e-3f5e-4c53-9a0c-4c3c1f0f2b11",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

type harness struct {
	baseURL   string
	storePath string
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &harness{
		baseURL:   srv.URL + "/api/",
		storePath: filepath.Join(t.TempDir(), "session.db"),
	}
}

// run executes one CLI invocation against the harness server and returns stdout and stderr.
func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root, closeApp := NewRootCommand(IO{In: strings.NewReader(stdin), Out: &out, ErrOut: &errOut}, func() (*config.ClientConfig, error) {
		return &config.ClientConfig{
			BaseURL:   h.baseURL,
			StorePath: h.storePath,
			Timeout:   5 * time.Second,
			Log:       config.Log{Level: "error"},
		}, nil
	})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	require.NoError(t, closeApp())
	if err != nil {
		reportError(&errOut, err)
	}

	return out.String(), errOut.String(), err
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestLoginWhoamiLogout(t *testing.T) {
	stubPassword(t, "Pa$$w0rd")
	token := signedToken(t, 7*24*time.Hour+30*time.Minute)

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/account/login":
			var req map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, map[string]string{"username": "alice", "password": "Pa$$w0rd"}, req)
			writeJSON(w, http.StatusOK, `{"token":"`+token+`","username":"alice","email":"alice@example.com"}`)
		case "/api/account/currentUser":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"token":"`+token+`","username":"alice","email":"alice@example.com"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	out, _, err := h.run(t, "alice\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "Signed in as alice <alice@example.com>")
	assert.Contains(t, out, "Session expires in 7d0h")

	out, _, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice <alice@example.com>")

	out, _, err = h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "-> /")
	assert.Contains(t, out, "Signed out")

	out, _, err = h.run(t, "", "current-user")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestWhoami_ExpiredSessionIsPurged(t *testing.T) {
	stubPassword(t, "Pa$$w0rd")
	token := signedToken(t, time.Hour)
	var rejected atomic.Bool

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/account/login":
			writeJSON(w, http.StatusOK, `{"token":"`+token+`","username":"alice","email":"alice@example.com"}`)
		case "/api/account/currentUser":
			rejected.Store(true)
			writeJSON(w, http.StatusUnauthorized, `{"title":"Unauthorized","status":401}`)
		}
	})

	_, _, err := h.run(t, "", "login", "-u", "alice")
	require.NoError(t, err)

	out, errOut, err := h.run(t, "", "whoami")
	require.Error(t, err)
	assert.True(t, rejected.Load())
	assert.Contains(t, out, "! Unauthorized\n")
	assert.Contains(t, out, "! Session expired - please login again\n")
	assert.Contains(t, out, "-> /\n")
	assert.Contains(t, errOut, "Request failed with status 401")

	out, _, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestLogin_InvalidCredentialsNotifies(t *testing.T) {
	stubPassword(t, "wrong")

	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"title":"invalid credentials"}`)
	})

	out, _, err := h.run(t, "", "login", "--username", "alice")

	require.Error(t, err)
	assert.Contains(t, out, "! invalid credentials")
	assert.NotContains(t, out, "->")
}

func TestRegister_PrintsFieldErrors(t *testing.T) {
	stubPassword(t, "short")

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/account/register", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, `{"title":"One or more validation errors occurred.","status":400,"errors":{`+
			`"DuplicateEmail":["Email 'bob@example.com' is already taken."],`+
			`"Password":["Passwords must be at least 6 characters."]}}`)
	})

	out, errOut, err := h.run(t, "bob\nbob@example.com\n", "register")

	require.Error(t, err)
	assert.NotContains(t, out, "!")
	assert.Contains(t, errOut, "Please correct the following:\n"+
		"  - Email 'bob@example.com' is already taken.\n"+
		"  - Passwords must be at least 6 characters.\n")
}

func TestRegister_Success(t *testing.T) {
	stubPassword(t, "Pa$$w0rd")

	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	out, _, err := h.run(t, "", "register", "-u", "bob", "-e", "bob@example.com")

	require.NoError(t, err)
	assert.Contains(t, out, "Registered bob. Run login to sign in.")
}

func TestBuggy_ServerErrorNavigatesWithPayload(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/buggy/server-error", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, `{"statusCode":500,"message":"This is a server error"}`)
	})

	out, _, err := h.run(t, "", "buggy", "500")

	require.Error(t, err)
	assert.Contains(t, out, "-> /server-error")
	assert.Contains(t, out, `"message": "This is a server error"`)
}

func TestBuggy_NotFoundIsReportedUnclassified(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"title":"Not Found","status":404}`)
	})

	out, errOut, err := h.run(t, "", "buggy", "404")

	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Error: status 404: Not Found")
}

func TestBuggy_RejectsUnknownKind(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, _, err := h.run(t, "", "buggy", "418")
	assert.Error(t, err)
}

func TestPromptLine(t *testing.T) {
	var out bytes.Buffer

	got, err := promptLine(bufio.NewReader(strings.NewReader("  alice  \n")), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Username: ", out.String())

	got, err = promptLine(bufio.NewReader(strings.NewReader("no-newline")), "Email", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)

	_, err = promptLine(bufio.NewReader(strings.NewReader("")), "Email", io.Discard)
	assert.Error(t, err)
}
