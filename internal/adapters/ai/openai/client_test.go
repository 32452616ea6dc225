package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/ports/ai"

	"github.com/stretchr/testify/require"
)

// sentRequest es lo que el SDK pone en el cable.
type sentRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	MaxTokens int `json:"max_tokens"`
}

func newTestServer(t *testing.T, content string, status int) (*httptest.Server, *[]sentRequest) {
	t.Helper()
	var got []sentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req sentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = append(got, req)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   req.Model,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestGeneratePlan_ParsesJSONContent(t *testing.T) {
	srv, got := newTestServer(t, `{"targetExerciseMins":60,"targetCalories":1400,"aiInsightText":"Buddy is doing great."}`, http.StatusOK)

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	d, err := c.GeneratePlan(context.Background(), ai.PetProfile{Name: "Buddy"}, nil)
	require.NoError(t, err)
	require.Equal(t, 60, d.TargetExerciseMins)
	require.Equal(t, 1400, d.TargetCalories)

	require.Len(t, *got, 1)
	require.Equal(t, "gpt-4o-mini", (*got)[0].Model)
	require.Equal(t, "json_object", (*got)[0].ResponseFormat.Type)
	require.Equal(t, 500, (*got)[0].MaxTokens)

	var text string
	require.NoError(t, json.Unmarshal((*got)[0].Messages[0].Content, &text))
	require.Contains(t, text, "Buddy")
}

func TestDetectBreed_SendsImagePart(t *testing.T) {
	srv, got := newTestServer(t, `{"breed":"Labrador","estimatedAge":4,"size":"large","confidence":0.9}`, http.StatusOK)

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	g, err := c.DetectBreed(context.Background(), "https://img.example/buddy.jpg")
	require.NoError(t, err)
	require.Equal(t, "Labrador", g.Breed)

	var parts []struct {
		Type     string `json:"type"`
		ImageURL *struct {
			URL string `json:"url"`
		} `json:"image_url"`
	}
	require.NoError(t, json.Unmarshal((*got)[0].Messages[0].Content, &parts))
	require.Len(t, parts, 2)
	require.Equal(t, "image_url", parts[1].Type)
	require.Equal(t, "https://img.example/buddy.jpg", parts[1].ImageURL.URL)
}

func TestGeneratePlan_UpstreamFailures(t *testing.T) {
	srv, _ := newTestServer(t, "", http.StatusInternalServerError)
	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.GeneratePlan(context.Background(), ai.PetProfile{Name: "Buddy"}, nil)
	require.True(t, errors.Is(err, apperr.ErrUpstream))
	require.True(t, Error.Has(err))

	srv2, _ := newTestServer(t, "sorry, I cannot help", http.StatusOK)
	c2, _ := NewClient(Config{APIKey: "sk-test", BaseURL: srv2.URL, Timeout: time.Second})
	_, err = c2.GeneratePlan(context.Background(), ai.PetProfile{Name: "Buddy"}, nil)
	require.True(t, errors.Is(err, apperr.ErrUpstream))
}

func TestGeneratePlan_TimeoutIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.GeneratePlan(context.Background(), ai.PetProfile{Name: "Buddy"}, nil)
	require.ErrorIs(t, err, apperr.ErrUpstreamTimeout)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.True(t, Error.Has(err))
}
