package redis

import (
	"context"
	"time"
)

const postBudgetKey = "leo:post_budget"

// PostBudget is a local daily posting budget kept in redis so the external
// platform's 24h write cap survives process restarts. It is advisory: the
// platform's own 429 remains the backstop.
type PostBudget struct {
	client *Client
	limit  int
	window time.Duration
}

func NewPostBudget(client *Client, limit int, window time.Duration) *PostBudget {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &PostBudget{client: client, limit: limit, window: window}
}

// Allow consumes one post from the budget. The first consumption in a window
// starts the window.
func (b *PostBudget) Allow(ctx context.Context) (bool, error) {
	count, err := b.client.Incr(ctx, postBudgetKey)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := b.client.Expire(ctx, postBudgetKey, b.window); err != nil {
			return false, err
		}
	}
	return count <= int64(b.limit), nil
}
