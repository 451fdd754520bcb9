// Package model defines the domain types used across the application.
package model

import (
	"encoding/json"
	"time"
)

// Subject is a course name as it appears on the attendance listing.
// The portal renders one row per subject.
type Subject = string

// AttendanceRecord holds the attended/held lecture counts for one subject.
// Total == 0 means no classes have been held yet; it is not a zero ratio.
type AttendanceRecord struct {
	Present int `json:"present"`
	Total   int `json:"total"`
}

// SnapshotEntry is one subject's record at its position in the snapshot's
// display order.
type SnapshotEntry struct {
	Subject Subject          `json:"subject"`
	Record  AttendanceRecord `json:"record"`
}

// Snapshot is a complete point-in-time attendance mapping produced by one
// scrape. Insertion order is preserved and drives display order.
type Snapshot struct {
	subjects []Subject
	records  map[Subject]AttendanceRecord
}

// Set inserts or replaces the record for a subject. A repeated subject keeps
// its original position; the last written record wins.
func (s *Snapshot) Set(subject Subject, rec AttendanceRecord) {
	if s.records == nil {
		s.records = make(map[Subject]AttendanceRecord)
	}
	if _, ok := s.records[subject]; !ok {
		s.subjects = append(s.subjects, subject)
	}
	s.records[subject] = rec
}

// Get returns the record for a subject and whether it is present.
func (s Snapshot) Get(subject Subject) (AttendanceRecord, bool) {
	rec, ok := s.records[subject]
	return rec, ok
}

// Len returns the number of subjects in the snapshot.
func (s Snapshot) Len() int {
	return len(s.subjects)
}

// Entries returns the snapshot contents in insertion order.
func (s Snapshot) Entries() []SnapshotEntry {
	entries := make([]SnapshotEntry, 0, len(s.subjects))
	for _, subject := range s.subjects {
		entries = append(entries, SnapshotEntry{Subject: subject, Record: s.records[subject]})
	}
	return entries
}

// MarshalJSON encodes the snapshot as an ordered array of entries.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}

// UnmarshalJSON decodes an ordered array of entries, replacing any existing
// contents.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var entries []SnapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.subjects = nil
	s.records = nil
	for _, e := range entries {
		s.Set(e.Subject, e.Record)
	}
	return nil
}

// ChangeRecord describes one subject classified as "marked absent" between
// two snapshots.
type ChangeRecord struct {
	Subject  Subject
	Previous AttendanceRecord
	Current  AttendanceRecord
}

// Subscriber is a registered chat with its portal credentials and the last
// successfully fetched snapshot.
type Subscriber struct {
	ChatID               int64
	Username             string
	Password             string
	LastSnapshot         Snapshot
	NotificationsEnabled bool
	CreatedAt            time.Time
}
