package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*ConsoleProgress)(nil)

// ConsoleProgress prints a human-readable trace of an attempt.
type ConsoleProgress struct {
	out io.Writer
}

func NewConsoleProgress() *ConsoleProgress {
	return NewConsoleProgressTo(os.Stdout)
}

func NewConsoleProgressTo(out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{out: out}
}

func (u *ConsoleProgress) ShowAttemptStart(ctx context.Context, url, email string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Authenticating at %s ━━━\n", url)

	dim := color.New(color.Faint)
	dim.Fprintf(u.out, "   as %s\n", email)
}

func (u *ConsoleProgress) ShowStrategyStart(ctx context.Context, name entity.StrategyName) {
	icon, label := strategyDisplay(name)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(u.out, "\n%s %s\n", icon, label)
}

func (u *ConsoleProgress) ShowStrategyResult(ctx context.Context, outcome entity.StrategyOutcome) {
	took := outcome.Duration.Round(time.Millisecond)

	switch outcome.Result {
	case entity.StrategySucceeded:
		green := color.New(color.FgGreen)
		green.Fprintf(u.out, "✓ succeeded (%s)\n", took)
	case entity.StrategyNotApplicable:
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "– not applicable (%s)\n", took)
		if outcome.Error != "" {
			dim.Fprintf(u.out, "   %s\n", truncate(outcome.Error, 200))
		}
	default:
		red := color.New(color.FgRed)
		red.Fprintf(u.out, "❌ failed (%s)\n", took)
		if outcome.Error != "" {
			dim := color.New(color.Faint)
			dim.Fprintf(u.out, "   %s\n", truncate(outcome.Error, 200))
		}
	}
}

func (u *ConsoleProgress) ShowAttemptResult(ctx context.Context, report *entity.AttemptReport) {
	if report == nil {
		return
	}

	took := report.Duration.Round(time.Millisecond)
	if report.Success {
		green := color.New(color.FgGreen, color.Bold)
		green.Fprintf(u.out, "\n✅ Authentication completed by %s strategy in %s\n", report.Strategy, took)
		return
	}

	tried := make([]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		tried = append(tried, fmt.Sprintf("%s=%s", o.Strategy, o.Result))
	}

	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(u.out, "\n❌ Authentication failed after %s\n", took)
	if len(tried) > 0 {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   %s\n", strings.Join(tried, ", "))
	}
}

func strategyDisplay(name entity.StrategyName) (string, string) {
	displays := map[entity.StrategyName][2]string{
		entity.StrategyHeuristic: {"🔍", "Heuristic form fill"},
		entity.StrategyAssisted:  {"🤖", "AI-assisted analysis"},
		entity.StrategyFallback:  {"🧭", "Fallback entry points"},
	}

	if display, ok := displays[name]; ok {
		return display[0], display[1]
	}
	return "🔧", string(name)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
