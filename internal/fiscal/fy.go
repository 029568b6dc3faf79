package fiscal

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Format is the textual shape of a fiscal year label.
type Format int

const (
	// FormatShort is "2024-25".
	FormatShort Format = iota
	// FormatLong is "2024-2025".
	FormatLong
)

const (
	minYear = 1900
	maxYear = 2100
)

var (
	shortLabel = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	longLabel  = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

// Label is a parsed April–March fiscal year label. StartYear anchors the
// calendar: April..December fall in StartYear, January..March in StartYear+1.
type Label struct {
	StartYear int
	// End is the second half as written: two digits for FormatShort, four
	// for FormatLong.
	End    int
	Format Format
}

func (l Label) String() string {
	if l.Format == FormatLong {
		return fmt.Sprintf("%04d-%04d", l.StartYear, l.End)
	}
	return fmt.Sprintf("%04d-%02d", l.StartYear, l.End)
}

// Previous decrements both halves by one and keeps the format.
func (l Label) Previous() Label {
	prev := Label{StartYear: l.StartYear - 1, Format: l.Format}
	if l.Format == FormatLong {
		prev.End = l.End - 1
	} else {
		prev.End = (l.End + 99) % 100
	}
	return prev
}

// ParseLabel recognizes "YYYY-YY" and "YYYY-YYYY". The second half must be
// the year after the first: "2024-99" and "2024-2030" are rejected.
func ParseLabel(s string) (Label, bool) {
	if m := shortLabel.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if end != (start+1)%100 {
			return Label{}, false
		}
		return Label{StartYear: start, End: end, Format: FormatShort}, true
	}
	if m := longLabel.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if end != start+1 {
			return Label{}, false
		}
		return Label{StartYear: start, End: end, Format: FormatLong}, true
	}
	return Label{}, false
}

// ForDate returns the short-format label of the fiscal year containing t.
// t is read in UTC, like MonthWindow and MonthKey; business-local dates go
// through CalendarDate first. A zero time or a year outside 1900-2100 has no
// label.
func ForDate(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	t = t.UTC()
	if t.Year() < minYear || t.Year() > maxYear {
		return "", false
	}
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return Label{StartYear: start, End: (start + 1) % 100, Format: FormatShort}.String(), true
}

// Previous returns the label one fiscal year before label, in the same
// format, or "" when label is in neither supported format.
func Previous(label string) string {
	l, ok := ParseLabel(label)
	if !ok {
		return ""
	}
	return l.Previous().String()
}

// CompareLabels orders labels by fiscal start year. Unrecognized labels sort
// after recognized ones, lexically among themselves.
func CompareLabels(a, b string) int {
	la, okA := ParseLabel(a)
	lb, okB := ParseLabel(b)
	switch {
	case okA && okB && la.StartYear != lb.StartYear:
		if la.StartYear < lb.StartYear {
			return -1
		}
		return 1
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// InRange reports whether t carries a plausible calendar year for bucketing.
func InRange(t time.Time) bool {
	return !t.IsZero() && t.Year() >= minYear && t.Year() <= maxYear
}
