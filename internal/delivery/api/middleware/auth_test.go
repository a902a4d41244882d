package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restore/config"
	"restore/internal/delivery/api/response"
	deliverycontext "restore/internal/delivery/context"
	"restore/internal/domain/entity"
	"restore/internal/domain/service"
	"restore/internal/infra/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-with-enough-length"

type authFixture struct {
	echo     *echo.Echo
	tokenSvc service.TokenService
}

func newAuthFixture(t *testing.T) authFixture {
	cfg := &config.Config{}
	cfg.SecretKey.Token = testSecret

	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewAuthMiddleware(tokenSvc, logger)

	e := echo.New()
	e.HTTPErrorHandler = NewErrorMiddleware(logger, cfg).HandleHTTPError
	e.GET("/protected", func(c echo.Context) error {
		identity, ok := deliverycontext.GetIdentity(c)
		require.True(t, ok)
		fromCtx, ok := deliverycontext.IdentityFromContext(c.Request().Context())
		require.True(t, ok)
		assert.Equal(t, identity, fromCtx)

		return c.JSON(http.StatusOK, map[string]string{"user": identity.UserName})
	}, m.Authenticate)
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, m.Authenticate, m.RequireRole(entity.RoleAdmin))

	return authFixture{echo: e, tokenSvc: tokenSvc}
}

func (f authFixture) do(path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	return rec
}

func (f authFixture) issue(t *testing.T, roles ...string) string {
	token, expiresAt, err := f.tokenSvc.IssueToken(service.TokenSubject{
		UserID:   uuid.New(),
		UserName: "alice",
		Email:    "alice@test.com",
		Roles:    roles,
	})
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	return token
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var problem response.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "Unauthorized", problem.Title)
	assert.Equal(t, http.StatusUnauthorized, problem.Status)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do("/protected", "Bearer "+f.issue(t, "Member"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"alice"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get(echo.HeaderAuthorization))
}

func TestAuthenticate_SchemeIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do("/protected", "bearer "+f.issue(t))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	valid := f.issue(t, "Member")

	expiredClaims := service.Claims{
		UserName: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic " + valid,
		"empty token":     "Bearer ",
		"garbage token":   "Bearer not.a.jwt",
		"tampered token":  "Bearer " + tamperSignature(valid),
		"expired token":   "Bearer " + expired,
		"missing subject": "Bearer " + noSubject,
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			assertUnauthorized(t, f.do("/protected", header))
		})
	}
}

func TestRequireRole(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do("/admin", "Bearer "+f.issue(t, "Member"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do("/admin", "Bearer "+f.issue(t, "Member", "Admin"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assertUnauthorized(t, f.do("/admin", ""))
}

// tamperSignature flips the first character of the signature segment.
func tamperSignature(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	return strings.Join(parts, ".")
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = bearerToken("Bearerabc")
	assert.False(t, ok)

	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
}
