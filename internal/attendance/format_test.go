package attendance

import (
	"strings"
	"testing"

	"attendance_bot/internal/model"
)

func rec(present, total int) model.AttendanceRecord {
	return model.AttendanceRecord{Present: present, Total: total}
}

func TestStatusEmoji(t *testing.T) {
	tests := []struct {
		name string
		rec  model.AttendanceRecord
		want string
	}{
		{name: "no classes held", rec: rec(0, 0), want: emojiNeutral},
		{name: "no classes held ignores present", rec: rec(3, 0), want: emojiNeutral},
		{name: "exactly 75 percent", rec: rec(3, 4), want: emojiGood},
		{name: "above 75 percent", rec: rec(8, 10), want: emojiGood},
		{name: "between 60 and 75", rec: rec(6, 10), want: emojiWarn},
		{name: "below 60", rec: rec(4, 10), want: emojiBad},
		{name: "zero of some", rec: rec(0, 5), want: emojiBad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusEmoji(tt.rec); got != tt.want {
				t.Errorf("StatusEmoji(%+v) = %q, want %q", tt.rec, got, tt.want)
			}
		})
	}
}

func TestPercentText(t *testing.T) {
	tests := []struct {
		name string
		rec  model.AttendanceRecord
		want string
	}{
		{name: "no classes held", rec: rec(0, 0), want: "N/A"},
		{name: "no classes held ignores present", rec: rec(2, 0), want: "N/A"},
		{name: "full attendance", rec: rec(7, 7), want: "100%"},
		{name: "rounds down", rec: rec(1, 3), want: "33%"},
		{name: "rounds up", rec: rec(2, 3), want: "67%"},
		{name: "half", rec: rec(5, 10), want: "50%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentText(tt.rec); got != tt.want {
				t.Errorf("PercentText(%+v) = %q, want %q", tt.rec, got, tt.want)
			}
		})
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{subject: "Data Structures", want: "DS"},
		{subject: "Engineering Mathematics III", want: "EMI"},
		{subject: "physics", want: "P"},
		{subject: "  spaced   out  name ", want: "SON"},
		{subject: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			if got := ShortName(tt.subject); got != tt.want {
				t.Errorf("ShortName(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

func TestNeededFor75(t *testing.T) {
	tests := []struct {
		name string
		rec  model.AttendanceRecord
		want int
	}{
		{name: "half attendance", rec: rec(5, 10), want: 5},
		{name: "already compliant", rec: rec(9, 10), want: 0},
		{name: "exactly at threshold", rec: rec(3, 4), want: 0},
		{name: "no classes held", rec: rec(0, 0), want: 0},
		{name: "sixty percent", rec: rec(6, 10), want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeededFor75(tt.rec)
			if got != tt.want {
				t.Errorf("NeededFor75(%+v) = %d, want %d", tt.rec, got, tt.want)
			}
			if got > 0 {
				// The closed form must actually reach 75%.
				p := float64(tt.rec.Present+got) / float64(tt.rec.Total+got)
				if p < 0.75 {
					t.Errorf("after %d lectures attendance is %.2f, below 0.75", got, p)
				}
			}
		})
	}
}

func TestOverallPercent(t *testing.T) {
	tests := []struct {
		name string
		snap model.Snapshot
		want string
	}{
		{
			name: "equal totals",
			snap: makeSnapshot(entry("A", 5, 10), entry("B", 5, 10)),
			want: "50%",
		},
		{
			name: "sum based, not an average of percentages",
			snap: makeSnapshot(entry("A", 1, 2), entry("B", 9, 10)),
			want: "83%",
		},
		{
			name: "empty snapshot",
			snap: makeSnapshot(),
			want: "N/A",
		},
		{
			name: "only unheld subjects",
			snap: makeSnapshot(entry("A", 0, 0)),
			want: "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallPercent(tt.snap); got != tt.want {
				t.Errorf("OverallPercent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatShort(t *testing.T) {
	t.Run("empty snapshot", func(t *testing.T) {
		if got := FormatShort(makeSnapshot()); got != noDataMessage {
			t.Errorf("FormatShort(empty) = %q, want %q", got, noDataMessage)
		}
	})

	t.Run("renders rows in snapshot order", func(t *testing.T) {
		snap := makeSnapshot(entry("Data Structures", 7, 7), entry("Operating Systems", 5, 8))
		got := FormatShort(snap)

		for _, want := range []string{"Attendance Summary", "DS", "OS", "7/7", "5/8", "100%", "63%", legend} {
			if !strings.Contains(got, want) {
				t.Errorf("FormatShort output missing %q:\n%s", want, got)
			}
		}
		if strings.Index(got, "DS") > strings.Index(got, "OS") {
			t.Errorf("subjects out of order:\n%s", got)
		}
	})
}

func TestFormatFull(t *testing.T) {
	t.Run("empty snapshot", func(t *testing.T) {
		if got := FormatFull(makeSnapshot()); got != noDataMessage {
			t.Errorf("FormatFull(empty) = %q, want %q", got, noDataMessage)
		}
	})

	t.Run("uses complete subject names", func(t *testing.T) {
		snap := makeSnapshot(entry("Engineering Mathematics III", 12, 16))
		got := FormatFull(snap)

		if !strings.Contains(got, "Engineering Mathematics III: 12/16 (75%)") {
			t.Errorf("FormatFull output missing detail line:\n%s", got)
		}
	})
}

func TestFormatLow(t *testing.T) {
	tests := []struct {
		name     string
		snap     model.Snapshot
		wantOK   bool
		contains []string
	}{
		{
			name:   "empty snapshot",
			snap:   makeSnapshot(),
			wantOK: false,
		},
		{
			name:   "all above threshold",
			snap:   makeSnapshot(entry("A", 9, 10), entry("B", 3, 4)),
			wantOK: false,
		},
		{
			name:   "unheld subjects never count as low",
			snap:   makeSnapshot(entry("A", 0, 0)),
			wantOK: false,
		},
		{
			name:     "below threshold with needed count",
			snap:     makeSnapshot(entry("Operating Systems", 5, 10)),
			wantOK:   true,
			contains: []string{"Low Attendance", "*OS*", "5/10", "50%", "need 5 more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatLow(tt.snap, DefaultLowThreshold)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (output: %q)", ok, tt.wantOK, got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatLow output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatChanges(t *testing.T) {
	changes := []model.ChangeRecord{
		{Subject: "Data Structures", Current: rec(5, 8)},
		{Subject: "Operating Systems", Current: rec(4, 10)},
	}
	got := FormatChanges(changes)

	for _, want := range []string{"Absent marked!", "*DS*", "*OS*"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatChanges output missing %q:\n%s", want, got)
		}
	}
}
