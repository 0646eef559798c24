package entity

import "time"

const DefaultTypeDelay = 120 * time.Millisecond

type FillOptions struct {
	Slow      bool
	TypeDelay time.Duration
}

// EffectiveTypeDelay returns the per-character delay for simulated typing.
func (o FillOptions) EffectiveTypeDelay() time.Duration {
	if o.TypeDelay > 0 {
		return o.TypeDelay
	}
	return DefaultTypeDelay
}

type AuthRequest struct {
	URL         string
	Credentials Credentials
	ExtraData   map[string]string
	Options     FillOptions
}

// Attempt carries everything a strategy needs for one authentication run.
type Attempt struct {
	URL         string
	Credentials Credentials
	Values      ValueSource
	Options     FillOptions
}
