package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"attendance_bot/internal/model"
)

var ratioPattern = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// Extract parses the rendered attendance table into a snapshot.
//
// Parsing is lenient: rows with fewer than three cells (headers, spacers)
// and rows whose third cell carries no "present/total" ratio are skipped,
// since the portal's markup is not contractually stable. A repeated subject
// overwrites the earlier record.
func Extract(tableHTML string) (model.Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("parse attendance table: %w", err)
	}

	var snap model.Snapshot
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		subject := strings.TrimSpace(cells.Eq(1).Text())
		raw := strings.TrimSpace(cells.Eq(2).Find("a").First().Text())

		m := ratioPattern.FindStringSubmatch(raw)
		if m == nil {
			return
		}
		present, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])

		snap.Set(subject, model.AttendanceRecord{Present: present, Total: total})
	})
	return snap, nil
}
