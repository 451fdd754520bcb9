package bot

import (
	"context"
	"fmt"

	"attendance_bot/internal/attendance"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, "👋 Welcome! Type /help to see available commands.")
}

func (b *Bot) handleHelp(chatID int64) {
	b.replyMarkdown(chatID, `*📋 Available Commands:*

/verify       → Register / re-register your ERP account
/check        → Manually check attendance now
/all          → Full attendance with complete subject names
/low          → Show only subjects below 75%
/pause        → Pause auto-notifications
/resume       → Resume auto-notifications
/unsubscribe  → Remove your account from the bot
/help         → Show this message`)
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64) {
	sub, err := b.store.GetSubscriber(ctx, chatID)
	if err != nil {
		b.reply(chatID, notRegisteredMessage)
		return
	}

	b.reply(chatID, "⏳ Checking for any attendance updates...")

	snap, err := b.portal.Attendance(ctx, sub.Username, sub.Password)
	if err != nil {
		b.log.Error("check attendance", "chat_id", chatID, "error", err)
		b.reply(chatID, fetchFailedMessage)
		return
	}

	changes := attendance.Diff(sub.LastSnapshot, snap)
	if len(changes) == 0 {
		b.reply(chatID, "✅ No new attendance changes detected.")
		return
	}

	b.replyMarkdown(chatID, attendance.FormatChanges(changes))

	sub.LastSnapshot = snap
	if err := b.store.UpsertSubscriber(ctx, sub); err != nil {
		b.log.Error("save snapshot", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleAll(ctx context.Context, chatID int64) {
	sub, err := b.store.GetSubscriber(ctx, chatID)
	if err != nil {
		b.reply(chatID, notRegisteredMessage)
		return
	}

	b.reply(chatID, "⏳ Fetching your attendance...")

	snap, err := b.portal.Attendance(ctx, sub.Username, sub.Password)
	if err != nil {
		b.log.Error("fetch attendance", "chat_id", chatID, "error", err)
		b.reply(chatID, fetchFailedMessage)
		return
	}

	sub.LastSnapshot = snap
	if err := b.store.UpsertSubscriber(ctx, sub); err != nil {
		b.log.Error("save snapshot", "chat_id", chatID, "error", err)
	}

	b.replyMarkdown(chatID, attendance.FormatFull(snap))
	b.reply(chatID, fmt.Sprintf("📈 Overall: %s", attendance.OverallPercent(snap)))
}

func (b *Bot) handleLow(ctx context.Context, chatID int64) {
	sub, err := b.store.GetSubscriber(ctx, chatID)
	if err != nil {
		b.reply(chatID, notRegisteredMessage)
		return
	}

	b.reply(chatID, "⏳ Fetching your attendance...")

	snap, err := b.portal.Attendance(ctx, sub.Username, sub.Password)
	if err != nil {
		b.log.Error("fetch attendance", "chat_id", chatID, "error", err)
		b.reply(chatID, fetchFailedMessage)
		return
	}

	sub.LastSnapshot = snap
	if err := b.store.UpsertSubscriber(ctx, sub); err != nil {
		b.log.Error("save snapshot", "chat_id", chatID, "error", err)
	}

	if msg, ok := attendance.FormatLow(snap, attendance.DefaultLowThreshold); ok {
		b.replyMarkdown(chatID, msg)
		return
	}
	b.reply(chatID, "🎉 All subjects are above 75%!")
}

func (b *Bot) handlePause(ctx context.Context, chatID int64) {
	sub, err := b.store.GetSubscriber(ctx, chatID)
	if err != nil {
		b.reply(chatID, notRegisteredMessage)
		return
	}

	sub.NotificationsEnabled = false
	if err := b.store.UpsertSubscriber(ctx, sub); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, "🔕 Notifications paused. Use /resume to turn them back on.")
}

func (b *Bot) handleResume(ctx context.Context, chatID int64) {
	sub, err := b.store.GetSubscriber(ctx, chatID)
	if err != nil {
		b.reply(chatID, notRegisteredMessage)
		return
	}

	sub.NotificationsEnabled = true
	if err := b.store.UpsertSubscriber(ctx, sub); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, "🔔 Notifications resumed!")
}

func (b *Bot) handleUnsubscribe(ctx context.Context, chatID int64) {
	if err := b.store.DeleteSubscriber(ctx, chatID); err != nil {
		b.log.Error("delete subscriber", "chat_id", chatID, "error", err)
	}
	b.verify.clear(chatID)
	b.reply(chatID, "👋 You've been removed. Bye! Use /verify anytime to come back.")
}
