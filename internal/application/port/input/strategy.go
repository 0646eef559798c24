package input

import (
	"context"

	"form-agent/internal/domain/entity"
)

// Strategy is one detection-and-fill technique. A non-nil error always comes
// with StrategyFailed or StrategyNotApplicable.
type Strategy interface {
	Name() entity.StrategyName
	Run(ctx context.Context, attempt entity.Attempt) (entity.StrategyResult, error)
}
