package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"form-agent/internal/application/port/output"
	"form-agent/internal/di"
	"form-agent/internal/domain/entity"
	"form-agent/internal/infrastructure/logger"
)

type options struct {
	url       string
	email     string
	password  string
	headless  bool
	slow      bool
	stealth   bool
	typeDelay int
	data      string
	fields    []string

	provider string
	model    string
	logLevel string
	logFile  string
	observe  time.Duration
}

// parseData decodes the --data JSON object. Non-string values keep their
// JSON text form.
func parseData(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid --data JSON: %w", err)
	}

	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		case json.Number, bool:
			out[k] = fmt.Sprint(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("invalid --data value for %q: %w", k, err)
			}
			out[k] = string(b)
		}
	}
	return out, nil
}

// parseFields turns repeated key=value flags into a map. Later keys win.
func parseFields(fields []string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q, expected key=value", f)
		}
		out[key] = value
	}
	return out, nil
}

// buildRequest assembles the authentication request. A bad --data value is
// reported through warn and otherwise ignored.
func buildRequest(o options, warn func(error)) (entity.AuthRequest, error) {
	if strings.TrimSpace(o.url) == "" {
		return entity.AuthRequest{}, fmt.Errorf("target URL is required (--url or TARGET_URL)")
	}

	extra, err := parseData(o.data)
	if err != nil {
		warn(err)
		extra = nil
	}

	fields, err := parseFields(o.fields)
	if err != nil {
		return entity.AuthRequest{}, err
	}

	merged := make(map[string]string, len(extra)+len(fields))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	req := entity.AuthRequest{
		URL: strings.TrimSpace(o.url),
		Credentials: entity.Credentials{
			Email:    o.email,
			Password: o.password,
		},
		ExtraData: merged,
		Options: entity.FillOptions{
			Slow: o.slow,
		},
	}
	if o.typeDelay > 0 {
		req.Options.TypeDelay = time.Duration(o.typeDelay) * time.Millisecond
	}
	return req, nil
}

// containerConfig maps CLI options and configuration values onto the
// container configuration. --model applies to whichever provider is selected,
// and that provider's API key must be configured.
func containerConfig(o options, conf output.ConfigPort, defaults entity.Defaults) (di.Config, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = o.logLevel
	logCfg.File = o.logFile

	cfg := di.Config{
		Provider:          strings.ToLower(strings.TrimSpace(o.provider)),
		OpenRouterModel:   conf.Get("OPENROUTER_MODEL_NAME"),
		GeminiModel:       conf.Get("GEMINI_MODEL"),
		OllamaModel:       conf.Get("OLLAMA_MODEL"),
		OllamaURL:         conf.Get("OLLAMA_URL"),
		BrowserHeadless:   o.headless,
		BrowserStealth:    o.stealth,
		Log:               logCfg,
		Defaults:          defaults,
		NavigationTimeout: conf.GetDuration("NAVIGATION_TIMEOUT", 0),
		Settle:            conf.GetDuration("PAGE_SETTLE", 0),
	}
	if cfg.Provider == "" {
		cfg.Provider = di.ProviderOpenRouter
	}

	var err error
	switch cfg.Provider {
	case di.ProviderGemini:
		cfg.GeminiAPIKey, err = conf.Require("GEMINI_API_KEY")
		if o.model != "" {
			cfg.GeminiModel = o.model
		}
	case di.ProviderOllama:
		if o.model != "" {
			cfg.OllamaModel = o.model
		}
	case di.ProviderOpenRouter:
		cfg.OpenRouterAPIKey, err = conf.Require("OPENROUTER_API_KEY")
		if o.model != "" {
			cfg.OpenRouterModel = o.model
		}
	default:
		err = fmt.Errorf("unknown analyzer provider %q", cfg.Provider)
	}
	if err != nil {
		return di.Config{}, err
	}
	return cfg, nil
}
