package filter

// Compose layers the FY and month/quarter selection on top of base (usually
// role scoping). It is pure: base is never modified.
//
// Month narrowing only ever applies to confirmation_date, so tile totals stay
// consistent with listings driven by the same predicate.
func Compose(base Predicate, sel Selection) Predicate {
	pred := base
	if len(sel.FiscalYears) > 0 {
		pred = pred.And(FiscalYearIn(sel.FiscalYears...))
	}
	if windows := sel.MonthWindows(); len(windows) > 0 {
		pred = pred.And(ConfirmedWithin(windows...))
	}
	return pred
}
