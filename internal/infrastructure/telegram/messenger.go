package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of *tgbotapi.BotAPI the messenger needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Messenger sends Markdown messages to one fixed chat.
type Messenger struct {
	bot    sender
	chatID int64
}

func NewMessenger(botToken string, chatID int64) (*Messenger, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	bot.Debug = false
	return &Messenger{bot: bot, chatID: chatID}, nil
}

func (m *Messenger) Name() string { return "telegram" }

func (m *Messenger) SendText(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := tgbotapi.NewMessage(m.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	sent, err := m.bot.Send(msg)
	if err != nil {
		return "", fmt.Errorf("telegram: send to chat %d: %w", m.chatID, err)
	}
	return strconv.Itoa(sent.MessageID), nil
}
