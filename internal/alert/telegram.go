package alert

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phuslu/log"

	"marketpulse/internal/logging"
)

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers messages to one fixed chat.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *log.Logger
}

// NewTelegramNotifier logs in with token and targets chatID.
func NewTelegramNotifier(token string, chatID int64, logger *log.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewNotifier(bot, chatID, logger), nil
}

func NewNotifier(bot Sender, chatID int64, logger *log.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logging.Component(logger, "telegram"),
	}
}

// Send posts text as Markdown with link previews disabled. Messages over the
// Telegram limit are cut short. If Telegram rejects the markup the message
// is sent once more as plain text.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if runes := []rune(text); len(runes) > maxMessageRunes {
		text = string(runes[:maxMessageRunes-1]) + "…"
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		if !strings.Contains(err.Error(), "can't parse entities") {
			return fmt.Errorf("error sending message: %w", err)
		}

		n.logger.Warn().Err(err).Msg("Markdown rejected, resending as plain text")
		msg.ParseMode = ""
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("error sending message: %w", err)
		}
	}

	n.logger.Debug().Int64("chat_id", n.chatID).Int("length", len(text)).Msg("Message sent")
	return nil
}
