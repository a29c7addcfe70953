package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/okatkov/mailvault/pkg/models"
)

// Notifier announces stored email records to a Telegram chat
type Notifier struct {
	bot    *bot.Bot
	chatID int64
	logger *slog.Logger
}

// New creates a Telegram notifier
func New(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		bot:    b,
		chatID: chatID,
		logger: logger.With("component", "notify"),
	}, nil
}

// EmailStored announces a newly stored email. Failures are logged, not
// returned; a notification must never fail the operation that stored the
// record.
func (n *Notifier) EmailStored(ctx context.Context, email *models.Email) {
	text := fmt.Sprintf("New email #%d\nFrom: %s\nTo: %s\nSubject: %s",
		email.ID, email.Sender, email.Receiver, email.Subject)

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Error("failed to send notification", "error", err, "email_id", email.ID)
	}
}
