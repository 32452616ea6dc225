package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/logger"

	"github.com/stretchr/testify/require"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Invalid("value must be >= 0", "value"), http.StatusBadRequest},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized},
		{"not found wrapped", fmt.Errorf("pet %w", apperr.ErrNotFound), http.StatusNotFound},
		{"rate limited", &apperr.RateLimitError{RetryAfter: 42 * time.Second}, http.StatusTooManyRequests},
		{"upstream", fmt.Errorf("openai: %w", apperr.ErrUpstream), http.StatusBadGateway},
		{"timeout", apperr.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{"internal", errors.New("db exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, logger.Nop(), tc.err)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWriteError_ValidationFieldsAndRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, logger.Nop(), apperr.Invalid("missing required fields", "petId", "activityType"))

	var body struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{"petId", "activityType"}, body.Fields)

	rec = httptest.NewRecorder()
	WriteError(rec, logger.Nop(), &apperr.RateLimitError{RetryAfter: 1500 * time.Millisecond})
	require.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestWriteError_InternalDoesNotLeakDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, logger.Nop(), errors.New("pq: password authentication failed"))
	require.NotContains(t, rec.Body.String(), "password")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		PetID string `json:"petId"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"petId":"p1"}`))
	require.NoError(t, DecodeJSON(r, &v))
	require.Equal(t, "p1", v.PetID)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"petId":"p1","extra":1}`))
	require.True(t, apperr.IsValidation(DecodeJSON(r, &v)))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.NoError(t, DecodeJSON(r, &v))
}

func TestDecodeJSON_ReportsOffendingField(t *testing.T) {
	var v struct {
		Name  *string `json:"name"`
		Value float64 `json:"value"`
	}
	cases := []struct {
		body  string
		msg   string
		field []string
	}{
		{`{"currentStreak":9}`, "unknown field", []string{"currentStreak"}},
		{`{"value":"ten"}`, "invalid type", []string{"value"}},
		{`{"name":`, "invalid json", nil},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(c.body))
		err := DecodeJSON(r, &v)

		var verr *apperr.ValidationError
		require.True(t, errors.As(err, &verr), c.body)
		require.Equal(t, c.msg, verr.Msg, c.body)
		require.Equal(t, c.field, verr.Fields, c.body)
	}
}
