package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/interviewbuddy/internal/config"
	"github.com/PabloGalante/interviewbuddy/internal/domain"
)

// GeminiClient implements domain.TextGenerator on top of the Gemini API,
// either through an API key or through Vertex AI.
type GeminiClient struct {
	client *genai.Client
	gen    config.GenerationConfig
}

// NewGeminiClient picks the API key backend when a key is configured and
// falls back to Vertex AI when only a GCP project is set.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	var cc *genai.ClientConfig
	switch {
	case cfg.GeminiAPIKey != "":
		cc = &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	case cfg.GCPProjectID != "" && cfg.GCPLocation != "":
		cc = &genai.ClientConfig{
			Project:  cfg.GCPProjectID,
			Location: cfg.GCPLocation,
			Backend:  genai.BackendVertexAI,
		}
	default:
		return nil, &domain.GenerationError{
			Kind:    domain.KindConfiguration,
			Message: "GEMINI_API_KEY or IB_GCP_PROJECT/IB_GCP_LOCATION must be set",
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &domain.GenerationError{
			Kind:    domain.KindConfiguration,
			Message: fmt.Sprintf("creating Gemini client: %v", err),
			Err:     err,
		}
	}

	return &GeminiClient{client: client, gen: cfg.Generation}, nil
}

func (g *GeminiClient) contentConfig() *genai.GenerateContentConfig {
	temp := g.gen.Temperature
	topP := g.gen.TopP
	topK := g.gen.TopK

	return &genai.GenerateContentConfig{
		Temperature:      &temp,
		TopP:             &topP,
		TopK:             &topK,
		MaxOutputTokens:  g.gen.MaxOutputTokens,
		ResponseMIMEType: "text/plain",
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
}

// GenerateText implements domain.TextGenerator. Every call is stateless:
// one prompt in, the text of the first candidate out.
func (g *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), g.contentConfig())
	if err != nil {
		return "", transportError(err)
	}

	text := res.Text()
	if text == "" {
		return "", &domain.TransportError{StatusCode: 0, Message: "model returned empty text"}
	}
	return text, nil
}

// transportError keeps the HTTP status of API failures so they can be classified.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.TransportError{StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.TransportError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}

	return &domain.TransportError{StatusCode: 0, Message: err.Error(), Err: err}
}
