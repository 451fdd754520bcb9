// Package bot implements the Telegram transport: command handling, the
// credential verification flow, and outbound notifications.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"attendance_bot/internal/config"
	"attendance_bot/internal/model"
	"attendance_bot/internal/storage"
)

// Shown for any scrape failure outside the registration flow. Deliberately
// does not say whether credentials or the portal were at fault.
const fetchFailedMessage = "❌ Could not fetch attendance. Try again later."

const notRegisteredMessage = "You're not registered yet. Use /verify to get started."

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Portal is the interface to the attendance scraper.
type Portal interface {
	Attendance(ctx context.Context, username, password string) (model.Snapshot, error)
	VerifyLogin(ctx context.Context, username, password string) bool
}

// Bot is the Telegram bot that handles user commands and sends notifications.
type Bot struct {
	api    telegramAPI
	store  storage.Storage
	portal Portal
	cfg    *config.Config
	log    *slog.Logger
	verify *verifyFlow
}

// New creates a Bot with the given Telegram token, storage, and scraper.
func New(token string, store storage.Storage, portal Portal, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:    api,
		store:  store,
		portal: portal,
		cfg:    cfg,
		log:    log,
		verify: newVerifyFlow(),
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			if update.Message.IsCommand() {
				b.handleCommand(ctx, update.Message)
				continue
			}
			b.handleVerifyMessage(ctx, update.Message)
		}
	}
}

var menuCommands = []tgbotapi.BotCommand{
	{Command: "verify", Description: "Register / re-register your ERP account"},
	{Command: "check", Description: "Check for new attendance updates"},
	{Command: "all", Description: "Full attendance with complete subject names"},
	{Command: "low", Description: "Show only subjects below 75%"},
	{Command: "pause", Description: "Pause auto-notifications"},
	{Command: "resume", Description: "Resume auto-notifications"},
	{Command: "unsubscribe", Description: "Remove your account from the bot"},
	{Command: "help", Description: "Show available commands"},
}

func (b *Bot) registerCommands() {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(menuCommands...)); err != nil {
		b.log.Warn("register bot commands", "error", err)
	}
}

// SendMessage sends a plain text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

// SendMarkdown sends a Markdown-formatted message to the given chat.
func (b *Bot) SendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send markdown message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	b.SendMarkdown(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "verify":
		b.handleVerify(chatID)
	case "check":
		b.handleCheck(ctx, chatID)
	case "all":
		b.handleAll(ctx, chatID)
	case "low":
		b.handleLow(ctx, chatID)
	case "pause":
		b.handlePause(ctx, chatID)
	case "resume":
		b.handleResume(ctx, chatID)
	case "unsubscribe":
		b.handleUnsubscribe(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
