package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/httpclient"
	"pet-care-tracker/internal/ports/ai"

	"github.com/stretchr/testify/require"
)

// sentRequest es lo que el SDK pone en el cable (REST de generateContent).
type sentRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MimeType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
		}},
	}
}

// newLocalClient apunta a un httptest.Server y permite bajar fotos de loopback.
func newLocalClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "g-key", BaseURL: baseURL, Timeout: time.Second})
	require.NoError(t, err)
	c.images = httpclient.New(time.Second)
	c.checkImage = func(context.Context, string) error { return nil }
	return c
}

func TestDetectBreed_InlinesDownloadedImage(t *testing.T) {
	var got sentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/photo.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("fake-png"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("x-goog-api-key") != "g-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiReply(`{"breed":"Poodle","estimatedAge":5,"size":"small","confidence":0.7}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newLocalClient(t, srv.URL)

	g, err := c.DetectBreed(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	require.Equal(t, "Poodle", g.Breed)

	require.Len(t, got.Contents, 1)
	inline := got.Contents[0].Parts[0].InlineData
	require.NotNil(t, inline)
	require.Equal(t, "image/png", inline.MimeType)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("fake-png")), inline.Data)
	require.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
}

func TestDetectBreed_RejectsInternalPhotoURL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "g-key", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	for _, ref := range []string{
		srv.URL + "/photo.png", // http + loopback
		"https://127.0.0.1/photo.png",
		"https://169.254.169.254/latest/meta-data",
	} {
		_, err := c.DetectBreed(context.Background(), ref)
		require.ErrorIs(t, err, httpclient.ErrURLNotAllowed, ref)
		require.True(t, Error.Has(err))
	}
	require.Zero(t, calls)
}

func TestGeneratePlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiReply(`{"targetExerciseMins":30,"targetCalories":800,"aiInsightText":"Short walks today."}`))
	}))
	defer srv.Close()

	c := newLocalClient(t, srv.URL)

	d, err := c.GeneratePlan(context.Background(), ai.PetProfile{Name: "Milo"}, nil)
	require.NoError(t, err)
	require.Equal(t, 800, d.TargetCalories)
}

func TestGeneratePlan_EmptyCandidatesIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newLocalClient(t, srv.URL)
	_, err := c.GeneratePlan(context.Background(), ai.PetProfile{Name: "Milo"}, nil)
	require.True(t, errors.Is(err, apperr.ErrUpstream))
	require.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestGeneratePlan_ProviderErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	c := newLocalClient(t, srv.URL)
	_, err := c.GeneratePlan(context.Background(), ai.PetProfile{Name: "Milo"}, nil)
	require.ErrorIs(t, err, apperr.ErrUpstream)
	require.True(t, Error.Has(err))
}
