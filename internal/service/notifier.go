package service

import (
	"context"
	"errors"
	"fmt"

	"tourii_backend/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers user facing events. Delivery is best effort: callers log
// failures and carry on.
type Notifier interface {
	Notify(ctx context.Context, userID int64, n model.Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, int64, model.Notification) error { return nil }

// MultiNotifier fans a notification out to every notifier.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, userID int64, n model.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type TelegramConfig struct {
	BotToken string
	Debug    bool
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages the user's private chat about completed quests
// and successful perk exchanges. Other notifications are ignored.
type TelegramNotifier struct {
	bot sender
}

func NewTelegramNotifier(config TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = config.Debug

	return &TelegramNotifier{
		bot: bot,
	}, nil
}

func (t *TelegramNotifier) Notify(_ context.Context, userID int64, n model.Notification) error {
	text := telegramText(n)
	if text == "" {
		return nil
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func telegramText(n model.Notification) string {
	switch n.Type {
	case model.NotificationQuestCompleted:
		return fmt.Sprintf("Quest complete: %v! You earned %v Tourii points.", n.Payload["title"], n.Payload["points"])
	case model.NotificationExchangeState:
		if n.Payload["state"] != string(model.ExchangeSuccess) || n.Payload["replayed"] == true {
			return ""
		}
		return fmt.Sprintf("Perk %v redeemed. Remaining balance: %v points.", n.Payload["perk_id"], n.Payload["balance_after"])
	}
	return ""
}
