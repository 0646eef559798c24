package gemini

import (
	"context"
	"fmt"
	"strings"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

var _ output.AnalyzerPort = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger output.LoggerPort
}

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL     string
	Temperature float32
	MaxTokens   int32
	Logger      output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	if model == "" {
		model = DefaultModel
	}
	return Config{
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}

func NewGeminiAdapter(ctx context.Context, cfg Config) (*GeminiAdapter, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(cfg.Temperature),
			MaxOutputTokens:  cfg.MaxTokens,
			ResponseMIMEType: "application/json",
		},
		logger: cfg.Logger,
	}, nil
}

func (a *GeminiAdapter) Analyze(ctx context.Context, image *entity.Screenshot, text, instruction string) (string, error) {
	config := *a.config
	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, buildContents(image, text), &config)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	out := resp.Text()
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: empty gemini response", entity.ErrNoAnalysis)
	}

	if a.logger != nil && resp.UsageMetadata != nil {
		a.logger.Debug("Analysis received",
			"model", a.model,
			"promptTokens", resp.UsageMetadata.PromptTokenCount,
			"completionTokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}
	return out, nil
}

func buildContents(image *entity.Screenshot, text string) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(text)}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MimeType()))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
