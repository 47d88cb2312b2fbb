package core

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DatesWithNotesInMonth returns the 1-based days of the given year and
// 0-indexed month that hold a note, ascending. It scans every key on each call;
// correctness relies on keys being prefixable by "YYYY-MM".
func (s *Store) DatesWithNotesInMonth(year, month0 int) []int {
	prefix := monthPrefix(year, month0) + "-"
	days := []int{}
	for key := range s.notes {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		day, err := strconv.Atoi(key[len(prefix):])
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// Lookup is the per-cell pass-through used by the calendar view.
func (s *Store) Lookup(date string) (Note, bool) {
	return s.Get(date)
}

// DaySummary is what the calendar grid needs to draw one cell.
type DaySummary struct {
	Day       int    `json:"day"`
	Date      string `json:"date"`
	Emoji     string `json:"emoji,omitempty"`
	Images    int    `json:"images"`
	Preview   string `json:"preview"`
	Checklist int    `json:"checklist,omitempty"`
	Checked   int    `json:"checked,omitempty"`
}

// previewRunes bounds the text preview shown in a cell.
const previewRunes = 20

// MonthSummary returns one DaySummary per day with a note, ascending.
func (s *Store) MonthSummary(year, month0 int) []DaySummary {
	days := s.DatesWithNotesInMonth(year, month0)
	out := make([]DaySummary, 0, len(days))
	for _, day := range days {
		key := monthPrefix(year, month0) + "-" + twoDigits(day)
		n, ok := s.notes[key]
		if !ok {
			continue
		}
		out = append(out, DaySummary{
			Day:       day,
			Date:      key,
			Emoji:     n.Emoji,
			Images:    len(n.Images),
			Preview:   preview(n.Content),
			Checklist: strings.Count(n.Content, ChecklistUnchecked) + strings.Count(n.Content, ChecklistChecked),
			Checked:   strings.Count(n.Content, ChecklistChecked),
		})
	}
	return out
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func preview(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	if utf8.RuneCountInString(line) <= previewRunes {
		return line
	}
	r := []rune(line)
	return string(r[:previewRunes]) + "…"
}
