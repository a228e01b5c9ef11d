package services

import (
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serials at or below this value fall before 1970-01-01 and are
// rejected as implausible course or birth dates.
const minSpreadsheetSerial = 25569

// spreadsheetEpoch is 1899-12-30: the nominal 1900-01-01 epoch shifted back
// two days to cancel the spreadsheet format's 1900 leap-year bug.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateInput carries one of the three accepted raw shapes of a date: an
// already-typed time, a string in one of several regional layouts, or a
// numeric spreadsheet serial. The zero value means "absent".
type DateInput struct {
	t      *time.Time
	s      string
	serial *float64
}

func DateFromTime(t time.Time) DateInput { return DateInput{t: &t} }

func DateFromString(s string) DateInput { return DateInput{s: strings.TrimSpace(s)} }

func DateFromSerial(n float64) DateInput { return DateInput{serial: &n} }

// DateFromAny classifies a value of unknown shape at the ingestion boundary,
// so no type sniffing happens inside the validator.
func DateFromAny(v any) DateInput {
	switch d := v.(type) {
	case nil:
		return DateInput{}
	case time.Time:
		return DateFromTime(d)
	case *time.Time:
		if d == nil {
			return DateInput{}
		}
		return DateFromTime(*d)
	case string:
		return DateFromString(d)
	case float64:
		return DateFromSerial(d)
	case float32:
		return DateFromSerial(float64(d))
	case int:
		return DateFromSerial(float64(d))
	case int64:
		return DateFromSerial(float64(d))
	default:
		return DateInput{}
	}
}

func (d DateInput) IsZero() bool {
	return d.t == nil && d.s == "" && d.serial == nil
}

// Normalize converts the input into a canonical calendar date at UTC
// midnight. The boolean is false when the input cannot be understood as a
// date.
func (d DateInput) Normalize() (time.Time, bool) {
	switch {
	case d.t != nil:
		return DateOnly(*d.t), true
	case d.serial != nil:
		return serialToDate(*d.serial)
	case d.s != "":
		return parseDateString(d.s)
	default:
		return time.Time{}, false
	}
}

// DateOnly strips the time of day, keeping the calendar date the value
// carries in its own location and pinning it to UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func serialToDate(serial float64) (time.Time, bool) {
	if serial <= minSpreadsheetSerial {
		return time.Time{}, false
	}
	return spreadsheetEpoch.AddDate(0, 0, int(serial)), true
}

// Field orders for the positional layouts, tried in this sequence:
// DD.MM.YYYY, YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY, YYYY/MM/DD. The separator
// in the layout name is not significant; inputs split on '.', '/' or '-'.
var dateFieldOrders = [][3]int{
	{0, 1, 2}, // day, month, year
	{2, 1, 0}, // year, month, day
	{0, 1, 2},
	{1, 0, 2}, // month, day, year
	{2, 1, 0},
}

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

func parseDateString(s string) (time.Time, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '/' || r == '-'
	})
	if len(parts) == 3 {
		nums := [3]int{}
		numeric := true
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				numeric = false
				break
			}
			nums[i] = n
		}
		if numeric {
			for _, order := range dateFieldOrders {
				day, month, year := nums[order[0]], nums[order[1]], nums[order[2]]
				if d, ok := makeDate(year, month, day); ok {
					return d, true
				}
			}
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// makeDate accepts only real calendar dates with a four-digit year, so a
// layout whose field order does not fit the input fails instead of rolling
// over into a bogus date.
func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1000 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if day > daysInMonth(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
