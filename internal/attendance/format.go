package attendance

import (
	"fmt"
	"math"
	"strings"

	"attendance_bot/internal/model"
)

// Status markers by attendance percentage.
const (
	emojiNeutral = "⚪"
	emojiGood    = "🟢"
	emojiWarn    = "🟡"
	emojiBad     = "🔴"

	legend        = "_🟢≥75%  🟡60–74%  🔴<60%_"
	noDataMessage = "No attendance data found."
)

// DefaultLowThreshold is the percentage under which a subject counts as low.
const DefaultLowThreshold = 75

// StatusEmoji returns the status marker for a record: neutral when no
// classes were held, good at >=75%, warning at >=60%, bad below.
func StatusEmoji(r model.AttendanceRecord) string {
	if r.Total == 0 {
		return emojiNeutral
	}
	pct := float64(r.Present) / float64(r.Total) * 100
	switch {
	case pct >= 75:
		return emojiGood
	case pct >= 60:
		return emojiWarn
	default:
		return emojiBad
	}
}

// PercentText renders a record's percentage rounded to the nearest integer,
// or "N/A" when no classes were held.
func PercentText(r model.AttendanceRecord) string {
	if r.Total == 0 {
		return "N/A"
	}
	pct := math.Round(float64(r.Present) / float64(r.Total) * 100)
	return fmt.Sprintf("%d%%", int(pct))
}

// ShortName abbreviates a subject to the uppercased initials of its
// whitespace-separated words.
func ShortName(subject model.Subject) string {
	var b strings.Builder
	for _, word := range strings.Fields(subject) {
		b.WriteString(strings.ToUpper(string([]rune(word)[0])))
	}
	return b.String()
}

// NeededFor75 returns the minimum number of consecutive attended lectures
// that brings a record to at least 75%, never negative.
func NeededFor75(r model.AttendanceRecord) int {
	// Solve (present + x) / (total + x) >= 0.75 for integer x.
	needed := int(math.Ceil((0.75*float64(r.Total) - float64(r.Present)) / 0.25))
	if needed < 0 {
		return 0
	}
	return needed
}

// OverallPercent returns the percentage over summed present/total counts
// across all subjects, not an average of per-subject percentages.
func OverallPercent(snap model.Snapshot) string {
	var sum model.AttendanceRecord
	for _, e := range snap.Entries() {
		sum.Present += e.Record.Present
		sum.Total += e.Record.Total
	}
	return PercentText(sum)
}

// FormatShort renders a tabular summary with abbreviated subject names.
func FormatShort(snap model.Snapshot) string {
	if snap.Len() == 0 {
		return noDataMessage
	}

	var b strings.Builder
	b.WriteString("📊 *Attendance Summary*\n\n```\n")
	fmt.Fprintf(&b, "%-10s %-8s %5s\n", "Sub", "P/T", "Pct")
	b.WriteString(strings.Repeat("─", 26))
	b.WriteString("\n")

	for _, e := range snap.Entries() {
		ratio := fmt.Sprintf("%d/%d", e.Record.Present, e.Record.Total)
		fmt.Fprintf(&b, "%s%-9s %-8s %5s\n", StatusEmoji(e.Record), ShortName(e.Subject), ratio, PercentText(e.Record))
	}

	b.WriteString("```\n")
	b.WriteString(legend)
	return b.String()
}

// FormatFull renders one line per subject with complete subject names.
func FormatFull(snap model.Snapshot) string {
	if snap.Len() == 0 {
		return noDataMessage
	}

	var b strings.Builder
	b.WriteString("📋 *Full Attendance*\n\n")
	for _, e := range snap.Entries() {
		fmt.Fprintf(&b, "%s %s: %d/%d (%s)\n",
			StatusEmoji(e.Record), e.Subject, e.Record.Present, e.Record.Total, PercentText(e.Record))
	}
	b.WriteString("\n")
	b.WriteString(legend)
	return b.String()
}

// FormatLow renders only the subjects below the threshold percentage,
// each with the number of lectures needed to reach 75%. The second return
// is false when no subject is below threshold (including when the snapshot
// is empty), letting callers send their own all-clear message.
func FormatLow(snap model.Snapshot, threshold int) (string, bool) {
	var lines []string
	for _, e := range snap.Entries() {
		if e.Record.Total == 0 {
			continue
		}
		pct := float64(e.Record.Present) / float64(e.Record.Total) * 100
		if pct >= float64(threshold) {
			continue
		}
		lines = append(lines, fmt.Sprintf("🔴 *%s*: %d/%d (%s) — need %d more",
			ShortName(e.Subject), e.Record.Present, e.Record.Total, PercentText(e.Record), NeededFor75(e.Record)))
	}
	if len(lines) == 0 {
		return "", false
	}
	return fmt.Sprintf("⚠️ *Low Attendance (< %d%%)*\n\n%s", threshold, strings.Join(lines, "\n")), true
}

// FormatChanges renders one aggregated absent-marked notification, one line
// per changed subject.
func FormatChanges(changes []model.ChangeRecord) string {
	var b strings.Builder
	b.WriteString("📢 *Absent marked!*\n\n")
	for i, c := range changes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s *%s*", StatusEmoji(c.Current), ShortName(c.Subject))
	}
	return b.String()
}
