package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"attendance_bot/internal/model"
)

var ignoreTimestamps = cmpopts.IgnoreFields(model.Subscriber{}, "CreatedAt")

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func makeSnapshot(subjects ...string) model.Snapshot {
	var snap model.Snapshot
	for i, subject := range subjects {
		snap.Set(subject, model.AttendanceRecord{Present: i, Total: i + 1})
	}
	return snap
}

func snapshotComparer() cmp.Option {
	return cmp.Comparer(func(a, b model.Snapshot) bool {
		return cmp.Equal(a.Entries(), b.Entries())
	})
}

func TestSubscriberCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	tests := []struct {
		name string
		sub  model.Subscriber
	}{
		{
			name: "subscriber with snapshot",
			sub: model.Subscriber{
				ChatID:               12345,
				Username:             "student@example.edu",
				Password:             "secret",
				LastSnapshot:         makeSnapshot("Maths", "Physics"),
				NotificationsEnabled: true,
			},
		},
		{
			name: "muted subscriber with empty snapshot",
			sub: model.Subscriber{
				ChatID:               67890,
				Username:             "other@example.edu",
				Password:             "pw",
				NotificationsEnabled: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.sub
			if err := s.UpsertSubscriber(ctx, &sub); err != nil {
				t.Fatalf("upsert: %v", err)
			}
			if sub.CreatedAt.IsZero() {
				t.Error("CreatedAt not populated on insert")
			}

			got, err := s.GetSubscriber(ctx, sub.ChatID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if diff := cmp.Diff(&sub, got, ignoreTimestamps, snapshotComparer()); diff != "" {
				t.Errorf("subscriber mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetSubscriberNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	_, err := s.GetSubscriber(ctx, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	sub := model.Subscriber{
		ChatID:               1,
		Username:             "student@example.edu",
		Password:             "old",
		LastSnapshot:         makeSnapshot("Maths"),
		NotificationsEnabled: true,
	}
	if err := s.UpsertSubscriber(ctx, &sub); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	sub.Password = "new"
	sub.LastSnapshot = makeSnapshot("Maths", "Physics")
	sub.NotificationsEnabled = false
	if err := s.UpsertSubscriber(ctx, &sub); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.GetSubscriber(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(&sub, got, ignoreTimestamps, snapshotComparer()); diff != "" {
		t.Errorf("subscriber mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotOrderSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	// Deliberately not alphabetical; the display order must come back
	// exactly as scraped.
	snap := makeSnapshot("Zoology", "Algebra", "Mechanics", "Botany")
	sub := model.Subscriber{
		ChatID:               7,
		Username:             "u",
		Password:             "p",
		LastSnapshot:         snap,
		NotificationsEnabled: true,
	}
	if err := s.UpsertSubscriber(ctx, &sub); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetSubscriber(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(snap.Entries(), got.LastSnapshot.Entries()); diff != "" {
		t.Errorf("snapshot order mismatch (-want +got):\n%s", diff)
	}
}

func TestListSubscribers(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for chatID := int64(1); chatID <= 3; chatID++ {
		sub := model.Subscriber{
			ChatID:               chatID,
			Username:             "u",
			Password:             "p",
			NotificationsEnabled: chatID != 2,
		}
		if err := s.UpsertSubscriber(ctx, &sub); err != nil {
			t.Fatalf("upsert %d: %v", chatID, err)
		}
	}

	subs, err := s.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("len = %d, want 3", len(subs))
	}
	if subs[1].NotificationsEnabled {
		t.Error("subscriber 2 should be muted")
	}
}

func TestDeleteSubscriber(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	sub := model.Subscriber{ChatID: 1, Username: "u", Password: "p", NotificationsEnabled: true}
	if err := s.UpsertSubscriber(ctx, &sub); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.DeleteSubscriber(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetSubscriber(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("error after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent subscriber is not an error.
	if err := s.DeleteSubscriber(ctx, 99); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}
