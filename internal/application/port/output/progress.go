package output

import (
	"context"

	"form-agent/internal/domain/entity"
)

type ProgressPort interface {
	ShowAttemptStart(ctx context.Context, url, email string)
	ShowStrategyStart(ctx context.Context, name entity.StrategyName)
	ShowStrategyResult(ctx context.Context, outcome entity.StrategyOutcome)
	ShowAttemptResult(ctx context.Context, report *entity.AttemptReport)
}
