package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zeebo/errs"
	"google.golang.org/genai"

	"pet-care-tracker/internal/adapters/ai/prompt"
	"pet-care-tracker/internal/platform/httpclient"
	"pet-care-tracker/internal/ports/ai"
)

// Error es la clase de errores del adapter Gemini.
var Error = errs.Class("gemini")

var ErrEmptyResponse = errors.New("no content in response")

const (
	defaultModel      = "gemini-2.0-flash"
	defaultAPIVersion = "v1beta"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // vacío = generativelanguage.googleapis.com
	Timeout time.Duration

	RequestsPerSecond float64
}

// Client implementa ai.BreedDetector y ai.CarePlanGenerator con Models.GenerateContent.
// Gemini no baja la imagen por URL: la descargamos nosotros y va inline.
type Client struct {
	api   *genai.Client
	model string

	images     *httpclient.Client
	checkImage func(ctx context.Context, rawURL string) error
}

func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, Error.New("api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpclient.NewThrottledHTTP(cfg.Timeout, cfg.RequestsPerSecond),
		HTTPOptions: genai.HTTPOptions{
			APIVersion: defaultAPIVersion,
		},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	gc, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:        gc,
		model:      model,
		images:     httpclient.NewPublicOnly(cfg.Timeout),
		checkImage: httpclient.CheckPublicURL,
	}, nil
}

func (c *Client) DetectBreed(ctx context.Context, imageRef string) (ai.BreedGuess, error) {
	// photoUrl viene del usuario: solo https y hosts públicos
	if err := c.checkImage(ctx, imageRef); err != nil {
		return ai.BreedGuess{}, Error.Wrap(err)
	}
	img, mime, err := c.images.GetBytes(ctx, imageRef)
	if err != nil {
		return ai.BreedGuess{}, Error.Wrap(prompt.Classify(err))
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}

	raw, err := c.generate(ctx, []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mime, Data: img}},
		{Text: prompt.BreedInstruction},
	})
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
	raw, err := c.generate(ctx, []*genai.Part{{Text: prompt.CarePlan(profile, recent)}})
	if err != nil {
		return ai.PlanDraft{}, err
	}
	d, err := prompt.ParsePlan(raw)
	if err != nil {
		return ai.PlanDraft{}, Error.Wrap(prompt.Classify(err))
	}
	return d, nil
}

func (c *Client) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	resp, err := c.api.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", Error.Wrap(prompt.Classify(err))
	}

	text := firstText(resp)
	if strings.TrimSpace(text) == "" {
		return "", Error.Wrap(prompt.Classify(ErrEmptyResponse))
	}
	return text, nil
}

// firstText junta las partes de texto del primer candidato.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
