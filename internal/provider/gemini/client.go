package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Config holds the Gemini analyzer settings
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Model:       "gemini-1.5-flash",
		Temperature: 0.2,
	}
}

// generator sends one multimodal prompt and returns the reply text
type generator interface {
	Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
	Close() error
}

// genaiGenerator is the generator backed by the Gemini API
type genaiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func newGenaiGenerator(ctx context.Context, cfg Config) (*genaiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.ResponseMIMEType = "application/json"

	return &genaiGenerator{client: client, model: model}, nil
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	res, err := g.model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(imageFormat(mimeType), image))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			continue
		}
		sb.WriteString(string(text))
	}
	if sb.Len() == 0 {
		return "", ErrInvalidResponse
	}

	return sb.String(), nil
}

func (g *genaiGenerator) Close() error {
	return g.client.Close()
}

// imageFormat turns "image/png" into the "png" format genai.ImageData expects
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" || format == mimeType {
		return "jpeg"
	}
	return format
}
