// Package scheduler polls subscribers' attendance on a fixed cadence and
// notifies them about absent-marked lectures.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"attendance_bot/internal/attendance"
	"attendance_bot/internal/model"
	"attendance_bot/internal/storage"
)

// Notifier is the interface for sending Telegram notifications.
type Notifier interface {
	SendMarkdown(chatID int64, text string)
}

// Source is the interface for fetching a subscriber's attendance.
type Source interface {
	Attendance(ctx context.Context, username, password string) (model.Snapshot, error)
}

// Scheduler periodically scrapes every subscriber's attendance and sends
// change notifications. Subscribers are processed sequentially; one
// subscriber's failure never aborts the cycle.
type Scheduler struct {
	store      storage.Storage
	source     Source
	notifier   Notifier
	log        *slog.Logger
	interval   time.Duration
	startDelay time.Duration
	startHour  int
	endHour    int
	now        func() time.Time
}

// New creates a Scheduler with the default 30-minute cadence and an
// 8:00-18:00 weekday operational window.
func New(store storage.Storage, source Source, notifier Notifier, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:      store,
		source:     source,
		notifier:   notifier,
		log:        log,
		interval:   30 * time.Minute,
		startDelay: 10 * time.Second,
		startHour:  8,
		endHour:    18,
		now:        time.Now,
	}
}

// SetInterval overrides the polling cadence.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.interval = d
}

// SetWindow overrides the operational hours. Polling runs while the local
// hour is in [start, end) on weekdays.
func (s *Scheduler) SetWindow(startHour, endHour int) {
	s.startHour = startHour
	s.endHour = endHour
}

// Run starts the polling loop, blocking until ctx is cancelled. The first
// cycle runs shortly after startup, then every interval.
func (s *Scheduler) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.startDelay):
	}

	s.pollAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAll(ctx)
		}
	}
}

// inOperationalWindow reports whether polling is active at t: weekdays
// within the configured hours. Weekends are rest days.
func (s *Scheduler) inOperationalWindow(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return t.Hour() >= s.startHour && t.Hour() < s.endHour
}

func (s *Scheduler) pollAll(ctx context.Context) {
	if !s.inOperationalWindow(s.now()) {
		s.log.Info("outside operational window, skipping poll cycle")
		return
	}

	subs, err := s.store.ListSubscribers(ctx)
	if err != nil {
		s.log.Error("list subscribers", "error", err)
		return
	}

	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		if !sub.NotificationsEnabled {
			continue
		}
		s.pollSubscriber(ctx, sub)
	}
}

func (s *Scheduler) pollSubscriber(ctx context.Context, sub model.Subscriber) {
	s.log.Debug("polling subscriber", "chat_id", sub.ChatID)

	snap, err := s.source.Attendance(ctx, sub.Username, sub.Password)
	if err != nil {
		s.log.Error("poll attendance", "chat_id", sub.ChatID, "error", err)
		return
	}

	changes := attendance.Diff(sub.LastSnapshot, snap)
	if len(changes) == 0 {
		s.log.Debug("no changes", "chat_id", sub.ChatID)
		return
	}

	s.notifier.SendMarkdown(sub.ChatID, attendance.FormatChanges(changes))

	sub.LastSnapshot = snap
	if err := s.store.UpsertSubscriber(ctx, &sub); err != nil {
		s.log.Error("save snapshot", "chat_id", sub.ChatID, "error", err)
		return
	}

	s.log.Info("notified subscriber", "chat_id", sub.ChatID, "changes", len(changes))
}
