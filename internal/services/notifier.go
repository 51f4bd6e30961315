package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/distillate-labs/dieseldesk/internal/config"
)

// MessageSender sends one chat message, satisfied by *bot.Bot.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

// NotifierService sends a Telegram alert whenever the gasoil crack signal
// tier changes between refreshes. Without a bot token it stays disabled
// and every call is a no-op.
type NotifierService struct {
	sender MessageSender
	chatID string
	logger *slog.Logger

	mu       sync.Mutex
	lastTier string
}

// NewNotifierService creates the notifier. A missing token or chat ID
// disables it rather than erroring; alerting is best-effort by design
// decision recorded at construction.
func NewNotifierService(cfg config.TelegramConfig, logger *slog.Logger) *NotifierService {
	n := &NotifierService{chatID: cfg.ChatID, logger: logger}

	if cfg.BotToken == "" || cfg.ChatID == "" {
		logger.Info("telegram notifier disabled, no token or chat id configured")
		return n
	}

	b, err := bot.New(cfg.BotToken)
	if err != nil {
		logger.Warn("telegram notifier disabled, bot init failed", "error", err)
		return n
	}
	n.sender = b
	return n
}

// Enabled reports whether alerts will actually be sent.
func (n *NotifierService) Enabled() bool {
	return n.sender != nil && n.chatID != ""
}

// NotifyCrackTier compares the latest gasoil crack tier against the one
// from the previous refresh and sends an alert when it moved. The first
// observation seeds the state silently.
func (n *NotifierService) NotifyCrackTier(ctx context.Context, crackName, tier string, value float64) error {
	n.mu.Lock()
	previous := n.lastTier
	n.lastTier = tier
	n.mu.Unlock()

	if previous == "" || previous == tier {
		return nil
	}
	if !n.Enabled() {
		return nil
	}

	text := fmt.Sprintf("⛽ *%s* crack signal moved: %s → *%s* ($%.2f/bbl)",
		bot.EscapeMarkdown(crackName), bot.EscapeMarkdown(previous), bot.EscapeMarkdown(tier), value)

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}

	n.logger.Info("sent crack tier alert", "crack", crackName, "from", previous, "to", tier)
	return nil
}
