package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"attendance_bot/internal/attendance"
	"attendance_bot/internal/model"
)

type verifyStep int

const (
	stepAwaitingUsername verifyStep = iota
	stepAwaitingPassword
)

type pendingVerification struct {
	step     verifyStep
	username string
}

// verifyFlow holds the per-chat conversation state of the registration flow.
// An entry exists only between /verify and the flow's completion or failure.
type verifyFlow struct {
	mu      sync.Mutex
	pending map[int64]*pendingVerification
}

func newVerifyFlow() *verifyFlow {
	return &verifyFlow{pending: make(map[int64]*pendingVerification)}
}

func (f *verifyFlow) start(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[chatID] = &pendingVerification{step: stepAwaitingUsername}
}

func (f *verifyFlow) get(chatID int64) (*pendingVerification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pending[chatID]
	return p, ok
}

func (f *verifyFlow) clear(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, chatID)
}

func (b *Bot) handleVerify(chatID int64) {
	b.verify.start(chatID)
	b.replyMarkdown(chatID, "Let's get you set up! 👋\nPlease send your *ERP username* (email):")
}

// handleVerifyMessage advances the pending verification with one free-text
// message. Messages from chats without a pending flow are ignored.
func (b *Bot) handleVerifyMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	state, ok := b.verify.get(chatID)
	if !ok {
		return
	}

	switch state.step {
	case stepAwaitingUsername:
		state.username = text
		state.step = stepAwaitingPassword
		b.replyMarkdown(chatID, "Got it! Now send your *ERP password*:")

	case stepAwaitingPassword:
		b.completeVerification(ctx, chatID, state.username, text)
	}
}

// completeVerification checks the credentials and, on success, seeds the
// subscriber's snapshot with one scrape. The pending state is cleared on
// every outcome; a failed attempt requires a fresh /verify.
func (b *Bot) completeVerification(ctx context.Context, chatID int64, username, password string) {
	defer b.verify.clear(chatID)

	b.reply(chatID, "⏳ Verifying your credentials...")

	if !b.portal.VerifyLogin(ctx, username, password) {
		b.reply(chatID, "❌ Invalid username or password. Try /verify again.")
		return
	}

	snap, err := b.portal.Attendance(ctx, username, password)
	if err != nil {
		b.log.Error("initial scrape", "chat_id", chatID, "error", err)
		b.reply(chatID, fetchFailedMessage)
		return
	}

	sub := &model.Subscriber{
		ChatID:               chatID,
		Username:             username,
		Password:             password,
		LastSnapshot:         snap,
		NotificationsEnabled: true,
	}
	if err := b.store.UpsertSubscriber(ctx, sub); err != nil {
		b.log.Error("save subscriber", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Could not save your registration. Try /verify again.")
		return
	}

	b.replyMarkdown(chatID,
		"✅ Verified and registered!\n\nHere's your current attendance:\n\n"+
			attendance.FormatShort(snap)+
			"\n\nType /help to see available commands.")
}
