package adapter

import "context"

// PostReceipt identifies a successfully published post.
type PostReceipt struct {
	Platform string
	PostID   string
}

// SocialPoster is the port for publishing a short post to a social platform.
// Quota exhaustion is reported as *domain.RateLimitedError so callers can
// tell it apart from a generic failure.
type SocialPoster interface {
	Name() string
	Publish(ctx context.Context, text string) (*PostReceipt, error)
}
