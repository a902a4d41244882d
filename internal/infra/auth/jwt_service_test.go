package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"restore/config"
	"restore/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_token_secret_key_very_long_for_testing"

func newTestConfig() *config.Config {
	cfg := &config.Config{Auth: &config.AuthConfig{TokenTTL: time.Hour}}
	cfg.SecretKey.Token = testSecret

	return cfg
}

func testSubject() service.TokenSubject {
	return service.TokenSubject{
		UserID:   uuid.New(),
		UserName: "alice",
		Email:    "alice@test.com",
		Roles:    []string{"Member"},
	}
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	subject := testSubject()
	before := time.Now()

	token, expiresAt, err := jwtService.IssueToken(subject)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(before), "expiry must be strictly in the future")

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, subject.UserID, claims.UserID)
	assert.Equal(t, subject.UserName, claims.UserName)
	assert.Equal(t, subject.Email, claims.Email)
	assert.Equal(t, subject.Roles, claims.Roles)
	assert.True(t, claims.ExpiresAt.After(before))
	assert.Equal(t, time.Hour, jwtService.TokenTTL())
}

func TestJWTService_EmptySecret(t *testing.T) {
	jwtService, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt secret must be provided")
}

func TestJWTService_DefaultTTL(t *testing.T) {
	cfg := &config.Config{}
	cfg.SecretKey.Token = testSecret

	jwtService, err := NewJWTService(cfg)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, jwtService.TokenTTL())
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "failed to parse token structure")
}

func TestJWTService_RejectsTamperedTokens(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	token, _, err := jwtService.IssueToken(testSubject())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forgedPayload := strings.Replace(string(payload), `"Member"`, `"Admin"`, 1)
	require.NotEqual(t, string(payload), forgedPayload)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}

	tampered := map[string]string{
		"payload":   parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(forgedPayload)) + "." + parts[2],
		"signature": parts[0] + "." + parts[1] + "." + string(sig),
		"stripped":  parts[0] + "." + parts[1] + ".",
	}

	for name, forged := range tampered {
		t.Run(name, func(t *testing.T) {
			claims, err := jwtService.ValidateToken(forged)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_RejectsOtherSecret(t *testing.T) {
	issuer := newJWTService("another-secret-entirely-different", time.Hour, time.Now)
	verifier := newJWTService(testSecret, time.Hour, time.Now)

	token, _, err := issuer.IssueToken(testSubject())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	jwtService := newJWTService(testSecret, time.Minute, func() time.Time { return clock })

	token, expiresAt, err := jwtService.IssueToken(testSubject())
	require.NoError(t, err)

	clock = issuedAt.Add(30 * time.Second)
	_, err = jwtService.ValidateToken(token)
	require.NoError(t, err)

	clock = expiresAt.Add(time.Second)
	claims, err := jwtService.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_RequiresExpiry(t *testing.T) {
	jwtService := newJWTService(testSecret, time.Hour, time.Now)

	claims := service.Claims{
		UserName:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsUnexpectedAlgorithm(t *testing.T) {
	jwtService := newJWTService(testSecret, time.Hour, time.Now)

	claims := service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)
}
