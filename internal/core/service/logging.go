package service

import (
	"context"

	"github.com/rs/zerolog"
)

// logFor returns the request-scoped logger carried by ctx, so lines carry the
// request and user ids. Calls that did not come through HTTP, such as startup
// and background workers, log through base.
func logFor(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return base
}
