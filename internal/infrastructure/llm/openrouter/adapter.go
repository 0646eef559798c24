package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "google/gemini-2.0-flash-001"

var _ output.AnalyzerPort = (*OpenRouterAdapter)(nil)

// OpenRouterAdapter talks to any OpenAI-compatible chat completion endpoint
// that accepts image parts.
type OpenRouterAdapter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      output.LoggerPort
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Logger      output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	if model == "" {
		model = DefaultModel
	}
	return Config{
		APIKey:    apiKey,
		Model:     model,
		BaseURL:   "https://openrouter.ai/api/v1",
		MaxTokens: 2048,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// RoundTrip logs request and response metadata. Bodies carry base64
// screenshots, so only their size is logged.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		bodyBytes, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		t.logger.Debug("HTTP Request",
			"method", req.Method,
			"url", req.URL.String(),
			"bodyBytes", len(bodyBytes),
		)
	}

	resp, err := t.base.RoundTrip(req)

	if resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &OpenRouterAdapter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

func (a *OpenRouterAdapter) Analyze(ctx context.Context, image *entity.Screenshot, text, instruction string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    buildMessages(image, text, instruction),
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", entity.ErrNoAnalysis)
	}

	if a.logger != nil {
		a.logger.Debug("Analysis received",
			"model", resp.Model,
			"promptTokens", resp.Usage.PromptTokens,
			"completionTokens", resp.Usage.CompletionTokens,
		)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(image *entity.Screenshot, text, instruction string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instruction,
		})
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: text,
	}}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(image),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})
}

func dataURL(image *entity.Screenshot) string {
	return "data:" + image.MimeType() + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
