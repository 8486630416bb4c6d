package social

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leorestored/leo-restored/internal/domain"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
)

var _ adapter.SocialPoster = (*TelegramPoster)(nil)

// TelegramPoster publishes posts to a Telegram channel. It serves as the
// fallback platform when no X credentials are configured.
type TelegramPoster struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramPoster(token string, channelID int64) (*TelegramPoster, error) {
	if token == "" {
		return nil, errors.New("telegram token empty")
	}
	if channelID == 0 {
		return nil, errors.New("telegram channel id empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramPoster{bot: bot, chatID: channelID}, nil
}

func (p *TelegramPoster) Name() string { return "telegram" }

func (p *TelegramPoster) Publish(ctx context.Context, text string) (*adapter.PostReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sent, err := p.bot.Send(tgbotapi.NewMessage(p.chatID, text))
	if err != nil {
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) && tgErr.Code == 429 {
			return nil, &domain.RateLimitedError{
				Platform:   "telegram",
				RetryAfter: time.Duration(tgErr.RetryAfter) * time.Second,
			}
		}
		return nil, err
	}
	return &adapter.PostReceipt{
		Platform: "telegram",
		PostID:   strconv.Itoa(sent.MessageID),
	}, nil
}
