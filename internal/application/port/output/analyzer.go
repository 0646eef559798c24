package output

import (
	"context"

	"form-agent/internal/domain/entity"
)

// AnalyzerPort is a hosted multimodal model. The response is free-form text
// and may wrap or omit the requested JSON.
type AnalyzerPort interface {
	Analyze(ctx context.Context, image *entity.Screenshot, text, instruction string) (string, error)
}
