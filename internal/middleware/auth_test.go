package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("test-secret", time.Hour)
	tok, err := codec.Issue("u1", "alice", "submitter")
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "submitter", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("test-secret", -time.Minute)
	tok, err := codec.Issue("u1", "alice", "submitter")
	require.NoError(t, err)

	_, err = codec.Verify(tok)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenCodec("right-secret", time.Hour).Issue("u1", "alice", "submitter")
	require.NoError(t, err)

	_, err = NewTokenCodec("wrong-secret", time.Hour).Verify(tok)
	require.Error(t, err)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec("k", time.Hour).Verify("not.a.jwt")
	require.Error(t, err)
}

func authedHandler(t *testing.T, got **Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		*got = c
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuthMissingHeader(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("test-secret", time.Hour)
	var got *Claims
	rec := httptest.NewRecorder()
	codec.RequireAuth(authedHandler(t, &got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, got)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "missing_credential", body["error"])
}

func TestRequireAuthExpiredToken(t *testing.T) {
	t.Parallel()

	expired := NewTokenCodec("test-secret", -time.Minute)
	tok, err := expired.Issue("u1", "alice", "submitter")
	require.NoError(t, err)

	codec := NewTokenCodec("test-secret", time.Hour)
	var got *Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	codec.RequireAuth(authedHandler(t, &got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Nil(t, got)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_credential", body["error"])
	require.Equal(t, "credential expired", body["message"])
}

func TestRequireAuthGarbageToken(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("test-secret", time.Hour)
	var got *Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	codec.RequireAuth(authedHandler(t, &got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Nil(t, got)
}

func TestRequireAuthPassesClaims(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("test-secret", time.Hour)
	tok, err := codec.Issue("u9", "gwen", "guardian")
	require.NoError(t, err)

	var got *Claims
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	codec.RequireAuth(authedHandler(t, &got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, "u9", got.UID)
	require.Equal(t, "guardian", got.Role)
}
