package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"pet-care-tracker/internal/platform/apperr"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerify_LocalHS256(t *testing.T) {
	v, err := NewVerifier(testSecret, nil)
	require.NoError(t, err)

	tok := sign(t, testSecret, jwt.MapClaims{
		"sub":           "user-123",
		"email":         "ana@example.com",
		"user_metadata": map[string]any{"full_name": "Ana"},
		"exp":           time.Now().Add(time.Hour).Unix(),
	})

	c, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "user-123", c.UserID)
	require.Equal(t, "ana@example.com", c.Email)
	require.Equal(t, "Ana", c.Name)
}

func TestVerify_RejectsBadTokens(t *testing.T) {
	v, err := NewVerifier(testSecret, nil)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong secret": sign(t, "another-secret", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}),
		"expired":      sign(t, testSecret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no exp":       sign(t, testSecret, jwt.MapClaims{"sub": "u"}),
		"no sub":       sign(t, testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		"garbage":      "not-a-jwt",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			require.Error(t, err)
			require.True(t, errors.Is(err, apperr.ErrUnauthorized))
		})
	}

	_, err = v.Verify(context.Background(), "  ")
	require.ErrorIs(t, err, ErrTokenEmpty)
}

func TestVerify_FallsBackToUserEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"remote-1","email":"r@example.com","user_metadata":{"name":"Remote"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, AnonKey: "anon", Timeout: time.Second})
	require.NoError(t, err)
	v, err := NewVerifier("", client)
	require.NoError(t, err)

	c, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "remote-1", c.UserID)
	require.Equal(t, "Remote", c.Name)

	_, err = v.Verify(context.Background(), "bad")
	require.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestNewVerifier_RequiresSomething(t *testing.T) {
	_, err := NewVerifier("", nil)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(Config{})
	require.ErrorIs(t, err, ErrNotConfigured)
}
