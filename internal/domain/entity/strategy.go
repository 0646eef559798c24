package entity

import "time"

type StrategyName string

const (
	StrategyHeuristic StrategyName = "heuristic"
	StrategyAssisted  StrategyName = "ai_assisted"
	StrategyFallback  StrategyName = "fallback"
)

type StrategyResult int

const (
	StrategyNotApplicable StrategyResult = iota
	StrategySucceeded
	StrategyFailed
)

func (r StrategyResult) String() string {
	switch r {
	case StrategySucceeded:
		return "succeeded"
	case StrategyNotApplicable:
		return "not_applicable"
	case StrategyFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the orchestrator stops after this result.
func (r StrategyResult) Terminal() bool {
	return r == StrategySucceeded
}

type StrategyOutcome struct {
	Strategy StrategyName
	Result   StrategyResult
	Error    string
	Duration time.Duration
}

type AttemptReport struct {
	Success  bool
	Strategy StrategyName
	Outcomes []StrategyOutcome
	Duration time.Duration
}
