package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"form-agent/internal/di"
	"form-agent/internal/infrastructure/env"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(env.NewEnvService()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(envs *env.EnvService) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:           "form-agent",
		Short:         "Detects and fills login or signup forms on a web page",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, envs)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.url, "url", envs.Get("TARGET_URL"), "page to authenticate on")
	flags.StringVar(&o.email, "email", envs.Get("TEST_EMAIL"), "email or username to enter")
	flags.StringVar(&o.password, "password", envs.Get("TEST_PASSWORD"), "password to enter")
	flags.BoolVar(&o.headless, "headless", envs.GetBool("HEADLESS", false), "run the browser without a window")
	flags.BoolVar(&o.slow, "slow", false, "type character by character")
	flags.IntVar(&o.typeDelay, "typeDelay", 0, "per-character delay in milliseconds when --slow is set")
	flags.StringVar(&o.data, "data", "", "extra field values as a JSON object")
	flags.StringArrayVar(&o.fields, "field", nil, "extra field value as key=value (repeatable)")
	flags.StringVar(&o.provider, "provider", envs.GetWithDefault("AI_PROVIDER", di.ProviderOpenRouter), "page analyzer: openrouter, gemini or ollama")
	flags.StringVar(&o.model, "model", "", "analyzer model override")
	flags.BoolVar(&o.stealth, "stealth", envs.GetBool("BROWSER_STEALTH", false), "use a stealth browser page")
	flags.StringVar(&o.logLevel, "log-level", envs.GetWithDefault("LOG_LEVEL", "info"), "log level")
	flags.StringVar(&o.logFile, "log-file", envs.Get("LOG_FILE"), "additional JSON log file")
	flags.DurationVar(&o.observe, "observe", envs.GetDuration("OBSERVE_DURATION", 5*time.Second), "keep the browser open this long after success")

	return cmd
}

func run(ctx context.Context, o options, envs *env.EnvService) error {
	yellow := color.New(color.FgYellow)

	req, err := buildRequest(o, func(err error) {
		yellow.Fprintf(os.Stderr, "⚠️  %v, ignoring\n", err)
	})
	if err != nil {
		return err
	}

	cfg, err := containerConfig(o, envs, envs.LoadDefaults())
	if err != nil {
		return err
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer container.Close()

	container.Logger.Info("Authentication started", "url", req.URL, "env", envs.AppEnv())

	report, err := container.Authenticator.Authenticate(ctx, req)
	if err != nil {
		container.Logger.Error("Authentication aborted", "error", err)
		color.New(color.FgRed).Printf("\nCould not complete authentication: %v\n", err)
		return nil
	}

	if !report.Success {
		fmt.Println("\nNo strategy could authenticate on this page.")
		return nil
	}

	if o.observe > 0 {
		fmt.Printf("\nKeeping the browser open for %s...\n", o.observe)
		if err := container.Browser.Wait(ctx, o.observe); err != nil {
			container.Logger.Debug("Observation interrupted", "error", err)
		}
	}
	return nil
}
