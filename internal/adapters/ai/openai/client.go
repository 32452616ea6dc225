package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/zeebo/errs"

	"pet-care-tracker/internal/adapters/ai/prompt"
	"pet-care-tracker/internal/platform/httpclient"
	"pet-care-tracker/internal/ports/ai"
)

// Error es la clase de errores del adapter OpenAI.
var Error = errs.Class("openai")

var ErrEmptyResponse = errors.New("no content in response")

const defaultModel = "gpt-4o-mini"

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // vacío = api.openai.com
	Timeout time.Duration

	// Throttling de salida; 0 lo desactiva.
	RequestsPerSecond float64
}

// Client implementa ai.BreedDetector y ai.CarePlanGenerator con chat completions.
// OpenAI descarga la foto por su cuenta: acá no se baja nada.
type Client struct {
	api   *goopenai.Client
	model string
}

func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, Error.New("api key is required")
	}

	oc := goopenai.DefaultConfig(key)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		oc.BaseURL = base
	}
	oc.HTTPClient = httpclient.NewThrottledHTTP(cfg.Timeout, cfg.RequestsPerSecond)

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:   goopenai.NewClientWithConfig(oc),
		model: model,
	}, nil
}

func (c *Client) DetectBreed(ctx context.Context, imageRef string) (ai.BreedGuess, error) {
	raw, err := c.complete(ctx, goopenai.ChatCompletionMessage{
		Role: goopenai.ChatMessageRoleUser,
		MultiContent: []goopenai.ChatMessagePart{
			{Type: goopenai.ChatMessagePartTypeText, Text: prompt.BreedInstruction},
			{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
				URL:    imageRef,
				Detail: goopenai.ImageURLDetailLow,
			}},
		},
	}, 300)
	if err != nil {
		return ai.BreedGuess{}, err
	}
	g, err := prompt.ParseBreed(raw)
	if err != nil {
		return ai.BreedGuess{}, Error.Wrap(prompt.Classify(err))
	}
	return g, nil
}

func (c *Client) GeneratePlan(ctx context.Context, profile ai.PetProfile, recent []ai.ActivitySample) (ai.PlanDraft, error) {
	raw, err := c.complete(ctx, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: prompt.CarePlan(profile, recent),
	}, 500)
	if err != nil {
		return ai.PlanDraft{}, err
	}
	d, err := prompt.ParsePlan(raw)
	if err != nil {
		return ai.PlanDraft{}, Error.Wrap(prompt.Classify(err))
	}
	return d, nil
}

func (c *Client) complete(ctx context.Context, msg goopenai.ChatCompletionMessage, maxTokens int) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: []goopenai.ChatCompletionMessage{msg},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", Error.Wrap(prompt.Classify(err))
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", Error.Wrap(prompt.Classify(ErrEmptyResponse))
	}
	return resp.Choices[0].Message.Content, nil
}
