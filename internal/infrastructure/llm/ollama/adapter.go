package ollama

import (
	"context"
	"fmt"
	"strings"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

const (
	DefaultModel     = "llava"
	DefaultServerURL = "http://localhost:11434"
)

var _ output.AnalyzerPort = (*OllamaAdapter)(nil)

// OllamaAdapter runs the analysis on a local vision model.
type OllamaAdapter struct {
	llm         llms.Model
	model       string
	temperature float64
	logger      output.LoggerPort
}

type Config struct {
	Model       string
	ServerURL   string
	Temperature float64
	Logger      output.LoggerPort
}

func DefaultConfig(model, serverURL string) Config {
	if model == "" {
		model = DefaultModel
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	return Config{Model: model, ServerURL: serverURL, Temperature: 0.2}
}

func NewOllamaAdapter(cfg Config) (*OllamaAdapter, error) {
	llm, err := lcollama.New(
		lcollama.WithModel(cfg.Model),
		lcollama.WithServerURL(cfg.ServerURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &OllamaAdapter{
		llm:         llm,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}, nil
}

func (a *OllamaAdapter) Analyze(ctx context.Context, image *entity.Screenshot, text, instruction string) (string, error) {
	resp, err := a.llm.GenerateContent(ctx, buildMessages(image, text, instruction),
		llms.WithTemperature(a.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("%w: empty ollama response", entity.ErrNoAnalysis)
	}

	if a.logger != nil {
		a.logger.Debug("Analysis received", "model", a.model, "length", len(resp.Choices[0].Content))
	}
	return resp.Choices[0].Content, nil
}

func buildMessages(image *entity.Screenshot, text, instruction string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, 2)
	if instruction != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, instruction))
	}

	parts := []llms.ContentPart{llms.TextPart(text)}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, llms.BinaryPart(image.MimeType(), image.Data))
	}
	return append(messages, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})
}
