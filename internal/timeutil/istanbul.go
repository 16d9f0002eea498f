package timeutil

import (
	"time"
)

// Istanbul is the business time zone (UTC+3, no DST since 2016).
var Istanbul *time.Location

func init() {
	var err error
	Istanbul, err = time.LoadLocation("Europe/Istanbul")
	if err != nil {
		// Fallback when the tz database is missing from the image
		Istanbul = time.FixedZone("TRT", 3*60*60)
	}
}

// Now returns the current time in Istanbul
func Now() time.Time {
	return time.Now().In(Istanbul)
}

// FormatLocal formats a time in Istanbul using the given layout
func FormatLocal(t time.Time, layout string) string {
	return t.In(Istanbul).Format(layout)
}

// MonthBounds returns [first day of month, first day of next month) in Istanbul.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, Istanbul)
	return start, start.AddDate(0, 1, 0)
}

// PreviousMonth returns the calendar month before t in Istanbul.
func PreviousMonth(t time.Time) (time.Month, int) {
	local := t.In(Istanbul)
	prev := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, Istanbul).AddDate(0, -1, 0)
	return prev.Month(), prev.Year()
}

var monthNames = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// MonthName returns the Turkish month name, or "" for an invalid month.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DisplayDate    = "02.01.2006"
	CompactDate    = "20060102"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ParseDate accepts the ISO and dotted date forms used on work orders.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range []string{DateLayout, DisplayDate, DateTimeLayout, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, Istanbul); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
