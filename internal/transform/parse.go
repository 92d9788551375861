package transform

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseLocaleFloat parses a single trimmed value. A comma marks the regional convention
// ("1.234,56"), anything else is read as a plain decimal ("6.59"). ok is false for garbage.
func ParseLocaleFloat(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	// hex floats and digit separators are Go literal syntax, not data
	if value == "" || strings.ContainsAny(value, "xXpP_") {
		return 0, false
	}
	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/06",
	"20060102",
}

var timeSuffixes = []string{
	"",
	" 15:04:05",
	" 15:04",
	"T15:04:05",
}

// ParseDayFirst reads a calendar date, resolving ambiguous numeric dates as day/month.
// Any time-of-day component is discarded.
func ParseDayFirst(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return truncateDay(parsed), true
	}
	for _, layout := range dayFirstLayouts {
		for _, suffix := range timeSuffixes {
			if parsed, err := time.Parse(layout+suffix, value); err == nil {
				return truncateDay(parsed), true
			}
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart is the first-of-month bucket key for a date.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
