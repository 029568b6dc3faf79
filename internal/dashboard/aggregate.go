package dashboard

import (
	"sort"

	"rayenna-crm/internal/classify"
	"rayenna-crm/internal/fiscal"
	"rayenna-crm/internal/models"

	"github.com/shopspring/decimal"
)

// PeriodTotals are the four scalar figures shared by every tile and by the
// previous-year comparison.
type PeriodTotals struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalPipeline decimal.Decimal `json:"totalPipeline"`
	TotalCapacity decimal.Decimal `json:"totalCapacity"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
}

type Totals struct {
	PeriodTotals
	OpenPipeline decimal.Decimal `json:"openPipeline"`
	ProjectCount int             `json:"projectCount"`
}

type FYRow struct {
	FY                string          `json:"fy"`
	TotalProjectValue decimal.Decimal `json:"totalProjectValue"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	TotalCapacity     decimal.Decimal `json:"totalCapacity"`
	TotalPipeline     decimal.Decimal `json:"totalPipeline"`
}

type MonthPoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type StatusCount struct {
	Status models.ProjectStatus `json:"status"`
	Count  int                  `json:"count"`
	Value  decimal.Decimal      `json:"value"`
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Aggregate folds projects into totals. Revenue, profit and capacity are
// summed over revenue projects; pipeline figures over pipeline projects.
func Aggregate(projects []models.Project) Totals {
	t := Totals{
		PeriodTotals: PeriodTotals{
			TotalRevenue:  decimal.Zero,
			TotalPipeline: decimal.Zero,
			TotalCapacity: decimal.Zero,
			TotalProfit:   decimal.Zero,
		},
		OpenPipeline: decimal.Zero,
		ProjectCount: len(projects),
	}
	for i := range projects {
		p := &projects[i]
		if classify.IsRevenue(p) {
			t.TotalRevenue = t.TotalRevenue.Add(orZero(p.OrderValue))
			t.TotalProfit = t.TotalProfit.Add(orZero(p.GrossProfit))
			t.TotalCapacity = t.TotalCapacity.Add(orZero(p.SystemCapacityKw))
		}
		if classify.IsPipeline(p) {
			t.TotalPipeline = t.TotalPipeline.Add(orZero(p.OrderValue))
		}
		if classify.IsOpenPipeline(p) {
			t.OpenPipeline = t.OpenPipeline.Add(orZero(p.OrderValue))
		}
	}
	return t
}

func rowFrom(fy string, t PeriodTotals) FYRow {
	return FYRow{
		FY:                fy,
		TotalProjectValue: t.TotalRevenue,
		TotalProfit:       t.TotalProfit,
		TotalCapacity:     t.TotalCapacity,
		TotalPipeline:     t.TotalPipeline,
	}
}

// ByFiscalYear groups projects by their stored FY label, one row per label
// present.
func ByFiscalYear(projects []models.Project) []FYRow {
	groups := map[string][]models.Project{}
	for _, p := range projects {
		if p.FiscalYear == "" {
			continue
		}
		groups[p.FiscalYear] = append(groups[p.FiscalYear], p)
	}
	rows := make([]FYRow, 0, len(groups))
	for fy, ps := range groups {
		rows = append(rows, rowFrom(fy, Aggregate(ps).PeriodTotals))
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []FYRow) {
	sort.Slice(rows, func(i, j int) bool {
		return fiscal.CompareLabels(rows[i].FY, rows[j].FY) < 0
	})
}

// upsertRow replaces the row for row.FY or appends it.
func upsertRow(rows []FYRow, row FYRow) []FYRow {
	for i := range rows {
		if rows[i].FY == row.FY {
			rows[i] = row
			return rows
		}
	}
	return append(rows, row)
}

func ensureRow(rows []FYRow, fy string) []FYRow {
	for _, r := range rows {
		if r.FY == fy {
			return rows
		}
	}
	return append(rows, rowFrom(fy, Aggregate(nil).PeriodTotals))
}

// MonthlyRevenue buckets revenue projects by month of confirmation. Projects
// without a confirmation date fall back to their creation timestamp.
func MonthlyRevenue(projects []models.Project) []MonthPoint {
	points := map[string]*MonthPoint{}
	for i := range projects {
		p := &projects[i]
		if !classify.IsRevenue(p) {
			continue
		}
		at := p.CreatedAt
		if p.ConfirmationDate != nil {
			at = *p.ConfirmationDate
		}
		if !fiscal.InRange(at) {
			continue
		}
		key := fiscal.MonthKey(at)
		pt, ok := points[key]
		if !ok {
			pt = &MonthPoint{Month: key, Revenue: decimal.Zero, Profit: decimal.Zero}
			points[key] = pt
		}
		pt.Revenue = pt.Revenue.Add(orZero(p.OrderValue))
		pt.Profit = pt.Profit.Add(orZero(p.GrossProfit))
	}

	out := make([]MonthPoint, 0, len(points))
	for _, pt := range points {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// StatusBreakdown counts projects and order value per status, in lifecycle
// order with Lost last. Statuses without projects are omitted.
func StatusBreakdown(projects []models.Project) []StatusCount {
	byStatus := map[models.ProjectStatus]*StatusCount{}
	for i := range projects {
		p := &projects[i]
		sc, ok := byStatus[p.Status]
		if !ok {
			sc = &StatusCount{Status: p.Status, Value: decimal.Zero}
			byStatus[p.Status] = sc
		}
		sc.Count++
		sc.Value = sc.Value.Add(orZero(p.OrderValue))
	}

	order := append(append([]models.ProjectStatus(nil), models.StatusProgression...), models.StatusLost)
	out := make([]StatusCount, 0, len(byStatus))
	for _, st := range order {
		if sc, ok := byStatus[st]; ok {
			out = append(out, *sc)
		}
	}
	return out
}
