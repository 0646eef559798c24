package input

import (
	"context"

	"form-agent/internal/domain/entity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, req entity.AuthRequest) (*entity.AttemptReport, error)
}
