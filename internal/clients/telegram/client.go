// Package telegram wraps the bot API calls the service needs: membership lookups and direct messages.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	telebot "gopkg.in/telebot.v3"

	"github.com/yukikurage/points-api/internal/config"
)

// Client is a thin, context-aware facade over telebot.Bot.
type Client struct {
	bot *telebot.Bot
	log *slog.Logger
}

// New builds the bot client. An empty token forces offline mode so the server can
// start without Telegram; every call then fails and verification degrades to false.
func New(cfg config.TelegramConfig, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Client:  &http.Client{Timeout: cfg.RequestTimeout},
		Offline: cfg.Offline || cfg.Token == "",
	}

	bot, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	if settings.Offline {
		log.Warn("telegram client running offline")
	}

	return &Client{bot: bot, log: log}, nil
}

// Bot exposes the underlying telebot instance for health checks.
func (c *Client) Bot() *telebot.Bot {
	return c.bot
}

// ChatMemberStatus returns the member status of userID in chatID, e.g. "member" or "left".
func (c *Client) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	member, err := c.bot.ChatMemberOf(telebot.ChatID(chatID), &telebot.User{ID: userID})
	if err != nil {
		return "", fmt.Errorf("get chat member %d in %d: %w", userID, chatID, err)
	}
	return string(member.Role), nil
}

// Send delivers a plain text message to a user's private chat.
func (c *Client) Send(ctx context.Context, telegramID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.bot.Send(telebot.ChatID(telegramID), text); err != nil {
		return fmt.Errorf("send message to %d: %w", telegramID, err)
	}
	return nil
}

// IsMemberStatus reports whether status counts as joined for task verification.
func IsMemberStatus(status string) bool {
	switch telebot.MemberStatus(status) {
	case telebot.Member, telebot.Administrator:
		return true
	}
	return false
}
