package filter

import (
	"net/url"
	"strings"

	"rayenna-crm/internal/fiscal"
)

// Selection is the raw FY/month/quarter choice of a dashboard request.
type Selection struct {
	FiscalYears []string
	Months      []string
	Quarters    []fiscal.Quarter
}

// ParseSelection reads the repeatable fy, month and quarter query parameters.
// Blank and duplicate values are dropped, month codes are zero-padded and
// unknown months or quarters are ignored. FY labels are kept verbatim: a
// label in an unknown format still filters by membership, it only loses the
// month narrowing and the previous-year comparison.
func ParseSelection(q url.Values) Selection {
	var sel Selection

	seenFY := map[string]bool{}
	for _, raw := range q["fy"] {
		fy := strings.TrimSpace(raw)
		if fy == "" || seenFY[fy] {
			continue
		}
		seenFY[fy] = true
		sel.FiscalYears = append(sel.FiscalYears, fy)
	}

	seenMonth := map[string]bool{}
	for _, raw := range q["month"] {
		m, ok := fiscal.NormalizeMonth(raw)
		if !ok || seenMonth[m] {
			continue
		}
		seenMonth[m] = true
		sel.Months = append(sel.Months, m)
	}

	seenQuarter := map[fiscal.Quarter]bool{}
	for _, raw := range q["quarter"] {
		qt, ok := fiscal.ParseQuarter(raw)
		if !ok || seenQuarter[qt] {
			continue
		}
		seenQuarter[qt] = true
		sel.Quarters = append(sel.Quarters, qt)
	}

	return sel
}

func (s Selection) SingleFY() (string, bool) {
	if len(s.FiscalYears) != 1 {
		return "", false
	}
	return s.FiscalYears[0], true
}

// EffectiveMonths is empty unless exactly one FY is selected: month codes
// carry no year and would be ambiguous across several fiscal years.
func (s Selection) EffectiveMonths() []string {
	if _, ok := s.SingleFY(); !ok {
		return nil
	}
	return fiscal.EffectiveMonths(s.Quarters, s.Months)
}

// MonthWindows anchors the effective months to the single selected FY. It is
// empty when narrowing does not apply, including when the FY label cannot be
// parsed.
func (s Selection) MonthWindows() []fiscal.Window {
	fy, ok := s.SingleFY()
	if !ok {
		return nil
	}
	label, ok := fiscal.ParseLabel(fy)
	if !ok {
		return nil
	}
	var windows []fiscal.Window
	for _, m := range s.EffectiveMonths() {
		w, ok := fiscal.MonthWindow(label, m)
		if !ok || !fiscal.InRange(w.Start) {
			continue
		}
		windows = append(windows, w)
	}
	return windows
}

// Narrowed reports whether month/quarter narrowing is active.
func (s Selection) Narrowed() bool {
	return len(s.MonthWindows()) > 0
}

// WithFiscalYear returns a copy selecting only label, keeping the month and
// quarter choice.
func (s Selection) WithFiscalYear(label string) Selection {
	return Selection{
		FiscalYears: []string{label},
		Months:      append([]string(nil), s.Months...),
		Quarters:    append([]fiscal.Quarter(nil), s.Quarters...),
	}
}

// FullYear drops month and quarter narrowing.
func (s Selection) FullYear() Selection {
	return Selection{FiscalYears: append([]string(nil), s.FiscalYears...)}
}
