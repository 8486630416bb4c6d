package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
)

// Compile-time assurance this poster satisfies the port
var _ adapter.SocialPoster = (*XPoster)(nil)

// XPoster publishes via the X API v2 create-tweet endpoint using an OAuth2
// user-context access token. A 429 is reported as *domain.RateLimitedError
// carrying the platform's 24h quota headers; the write quota resets daily,
// so callers just wait for the next cycle.
type XPoster struct {
	token  string
	base   string // e.g., https://api.x.com
	client *http.Client
}

func NewXPoster(accessToken string) (*XPoster, error) {
	if accessToken == "" {
		return nil, errors.New("x access token empty")
	}
	return &XPoster{
		token:  accessToken,
		base:   "https://api.x.com",
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (p *XPoster) Name() string { return "x" }

func (p *XPoster) Publish(ctx context.Context, text string) (*adapter.PostReceipt, error) {
	reqBody := struct {
		Text string `json:"text"`
	}{Text: text}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/2/tweets", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.RateLimitedError{
			Platform:      "x",
			AppRemaining:  resp.Header.Get("x-app-limit-24hour-remaining"),
			UserRemaining: resp.Header.Get("x-user-limit-24hour-remaining"),
		}
	}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("x http %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &adapter.PostReceipt{Platform: "x", PostID: payload.Data.ID}, nil
}
