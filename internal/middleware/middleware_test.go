package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/auth"
)

type fakeVerifier struct {
	claims auth.Claims
	err    error
}

func (f fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token != "good" {
		return auth.Claims{}, errors.New("bad token")
	}
	return f.claims, f.err
}

func claimsProbe(got *auth.Claims, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *ok = GetClaims(r.Context())
	})
}

func TestAuthContext_DevHeader(t *testing.T) {
	var got auth.Claims
	var ok bool
	h := AuthContext(nil)(claimsProbe(&got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DevOwnerHeader, "owner-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	require.Equal(t, "owner-1", got.UserID)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
}

func TestAuthContext_Verifier(t *testing.T) {
	var got auth.Claims
	var ok bool
	h := AuthContext(fakeVerifier{claims: auth.Claims{UserID: "u-9"}})(claimsProbe(&got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	require.Equal(t, "u-9", got.UserID)

	// con verifier configurado el header dev no vale
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DevOwnerHeader, "owner-1")
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("bearer  abc "))
	require.Empty(t, bearerToken("Basic abc"))
	require.Empty(t, bearerToken("abc"))
}

func TestRecover_LogsAndReturns500(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pets/x", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.EqualValues(t, 404, entries[0].ContextMap()["status"])
}
