package social

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
)

var _ adapter.SocialPoster = (*NoopPoster)(nil)

// NoopPoster logs the would-be post instead of publishing. Used in dev mode
// and when no platform credentials are configured.
type NoopPoster struct {
	log *zerolog.Logger
}

func NewNoopPoster(logger *zerolog.Logger) *NoopPoster {
	l := logger.With().Str("component", "NoopPoster").Logger()
	return &NoopPoster{log: &l}
}

func (p *NoopPoster) Name() string { return "noop" }

func (p *NoopPoster) Publish(ctx context.Context, text string) (*adapter.PostReceipt, error) {
	p.log.Info().Str("text", text).Msg("noop post")
	return &adapter.PostReceipt{Platform: "noop", PostID: "noop"}, nil
}
