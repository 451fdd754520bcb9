// Package attendance computes notify-worthy changes between snapshots and
// renders snapshots as Telegram messages. Everything here is pure.
package attendance

import "attendance_bot/internal/model"

// Diff returns the subjects in current that were marked absent since
// previous, in current's display order.
//
// A subject is marked absent when a lecture was held without the student:
// Total grew while Present stayed the same. A simultaneous increase of both
// counts means the student attended and produces no change. Subjects missing
// from previous diff against a zero record, so a brand-new subject with held
// lectures does report a change.
func Diff(previous, current model.Snapshot) []model.ChangeRecord {
	var changes []model.ChangeRecord
	for _, e := range current.Entries() {
		prev, ok := previous.Get(e.Subject)
		if !ok {
			prev = model.AttendanceRecord{}
		}
		if prev.Present == e.Record.Present && prev.Total != e.Record.Total {
			changes = append(changes, model.ChangeRecord{
				Subject:  e.Subject,
				Previous: prev,
				Current:  e.Record,
			})
		}
	}
	return changes
}
