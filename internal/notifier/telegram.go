package notifier

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
)

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot     sender
	chatID  int64
	retries int
	delay   time.Duration
	log     *zap.SugaredLogger
}

func NewTelegramNotifier(token string, chatID int64, retries int, delay time.Duration, log *zap.SugaredLogger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotification, err)
	}
	return &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		retries: retries,
		delay:   delay,
		log:     log,
	}, nil
}

func (t *TelegramNotifier) Send(message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Errorw("telegram send failed", "error", err)
		return apperr.Wrap(apperr.ErrNotification, err)
	}
	return nil
}

func (t *TelegramNotifier) SendWithRetry(message string) error {
	var err error
	for attempt := 1; attempt <= t.retries; attempt++ {
		err = t.Send(message)
		if err == nil {
			return nil
		}
		if attempt < t.retries {
			time.Sleep(t.delay)
		}
	}
	return err
}
