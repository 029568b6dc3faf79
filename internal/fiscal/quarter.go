package fiscal

import (
	"strconv"
	"strings"
	"time"
)

type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// Months in fiscal order. Q4 spans into the next calendar year.
var quarterMonths = map[Quarter][]string{
	Q1: {"04", "05", "06"},
	Q2: {"07", "08", "09"},
	Q3: {"10", "11", "12"},
	Q4: {"01", "02", "03"},
}

var fiscalMonthOrder = []string{"04", "05", "06", "07", "08", "09", "10", "11", "12", "01", "02", "03"}

func (q Quarter) Months() []string {
	return append([]string(nil), quarterMonths[q]...)
}

// ParseQuarter accepts "Q1".."Q4", case-insensitively.
func ParseQuarter(s string) (Quarter, bool) {
	q := Quarter(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := quarterMonths[q]; !ok {
		return "", false
	}
	return q, true
}

// NormalizeMonth turns "5", "05" or " 05 " into "05". Anything outside 1..12
// is rejected.
func NormalizeMonth(s string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 12 {
		return "", false
	}
	if n < 10 {
		return "0" + strconv.Itoa(n), true
	}
	return strconv.Itoa(n), true
}

// EffectiveMonths resolves the month codes a quarter/month selection narrows
// to. With both present the result is the intersection, so a month outside
// the selected quarters is dropped. With quarters only it is every month of
// those quarters; without quarters the month selection is returned as is.
// The result is deduplicated and in fiscal order.
func EffectiveMonths(quarters []Quarter, months []string) []string {
	selected := make(map[string]bool)
	if len(quarters) == 0 {
		for _, m := range months {
			selected[m] = true
		}
		return inFiscalOrder(selected)
	}

	inQuarters := make(map[string]bool)
	for _, q := range quarters {
		for _, m := range quarterMonths[q] {
			inQuarters[m] = true
		}
	}
	if len(months) == 0 {
		return inFiscalOrder(inQuarters)
	}
	for _, m := range months {
		if inQuarters[m] {
			selected[m] = true
		}
	}
	return inFiscalOrder(selected)
}

func inFiscalOrder(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, m := range fiscalMonthOrder {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}

// Window is a half-open [Start, End) interval in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthWindow anchors a month code to the calendar year implied by the fiscal
// year: 04..12 in StartYear, 01..03 in StartYear+1.
func MonthWindow(l Label, month string) (Window, bool) {
	code, ok := NormalizeMonth(month)
	if !ok {
		return Window{}, false
	}
	n, _ := strconv.Atoi(code)
	year := l.StartYear
	if time.Month(n) < time.April {
		year++
	}
	start := time.Date(year, time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}, true
}

// CalendarDate is midnight UTC of the calendar day t falls on in loc. Stored
// confirmation dates use it so that FY labels, month windows and month keys
// all see the business-local day.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey buckets t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
