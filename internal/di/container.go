package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"form-agent/internal/application/port/input"
	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"
	"form-agent/internal/infrastructure/browser/rod"
	"form-agent/internal/infrastructure/llm/gemini"
	"form-agent/internal/infrastructure/llm/ollama"
	"form-agent/internal/infrastructure/llm/openrouter"
	"form-agent/internal/infrastructure/logger"
	"form-agent/internal/infrastructure/userinteraction"
	"form-agent/internal/usecase/orchestrator"
	"form-agent/internal/usecase/strategies/assisted"
	"form-agent/internal/usecase/strategies/fallback"
	"form-agent/internal/usecase/strategies/heuristic"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

type Container struct {
	Browser       output.BrowserPort
	Analyzer      output.AnalyzerPort
	Logger        output.LoggerPort
	Progress      output.ProgressPort
	Strategies    []input.Strategy
	Authenticator input.Authenticator
}

type Config struct {
	Provider string

	OpenRouterAPIKey string
	OpenRouterModel  string
	GeminiAPIKey     string
	GeminiModel      string
	OllamaModel      string
	OllamaURL        string

	BrowserHeadless bool
	BrowserStealth  bool
	BrowserSlowMo   time.Duration

	Log      logger.Config
	Defaults entity.Defaults

	// Orchestrator timings; zero keeps the defaults.
	NavigationTimeout time.Duration
	Settle            time.Duration
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	analyzer, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browserCfg.Stealth = cfg.BrowserStealth
	browserCfg.SlowMotion = cfg.BrowserSlowMo
	browser := rod.NewBrowserAdapter(browserCfg, log)

	if err := browser.Ready(ctx); err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	strategies := newStrategies(browser, analyzer, log)
	progress := userinteraction.NewConsoleProgress()

	orchCfg := orchestrator.DefaultConfig()
	orchCfg.Defaults = cfg.Defaults
	if cfg.NavigationTimeout > 0 {
		orchCfg.NavigationTimeout = cfg.NavigationTimeout
	}
	if cfg.Settle > 0 {
		orchCfg.Settle = cfg.Settle
	}

	return &Container{
		Browser:       browser,
		Analyzer:      analyzer,
		Logger:        log,
		Progress:      progress,
		Strategies:    strategies,
		Authenticator: orchestrator.New(browser, strategies, log, progress, orchCfg),
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// newStrategies returns the strategies in priority order. The assisted
// strategy re-runs a heuristic pass on the view an entry-point click reveals.
func newStrategies(browser output.BrowserPort, analyzer output.AnalyzerPort, log output.LoggerPort) []input.Strategy {
	primary := heuristic.New(browser, log, heuristic.DefaultConfig())
	refill := heuristic.New(browser, log, heuristic.DefaultConfig())

	return []input.Strategy{
		primary,
		assisted.New(browser, analyzer, log, refill, assisted.DefaultConfig()),
		fallback.New(browser, log, fallback.DefaultConfig()),
	}
}

func newAnalyzer(ctx context.Context, cfg Config, log output.LoggerPort) (output.AnalyzerPort, error) {
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
		}
		c := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		c.Logger = log
		return openrouter.NewOpenRouterAdapter(c), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		c := gemini.DefaultConfig(cfg.GeminiAPIKey, cfg.GeminiModel)
		c.Logger = log
		return gemini.NewGeminiAdapter(ctx, c)

	case ProviderOllama:
		c := ollama.DefaultConfig(cfg.OllamaModel, cfg.OllamaURL)
		c.Logger = log
		return ollama.NewOllamaAdapter(c)

	default:
		return nil, fmt.Errorf("unknown analyzer provider %q", provider)
	}
}
