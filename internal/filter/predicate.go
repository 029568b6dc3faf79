package filter

import (
	"strings"

	"rayenna-crm/internal/fiscal"
	"rayenna-crm/internal/models"

	"gorm.io/gorm"
)

// Clause is one conjunct of a Predicate. Match and Apply must agree: a row
// the SQL rendering selects is exactly a row Match accepts.
type Clause interface {
	Match(p *models.Project) bool
	Apply(db *gorm.DB) *gorm.DB
}

// Predicate is an immutable conjunction of clauses. The zero value matches
// every project.
type Predicate struct {
	clauses []Clause
}

func All() Predicate {
	return Predicate{}
}

// And returns a new predicate with extra clauses; the receiver is untouched.
func (p Predicate) And(clauses ...Clause) Predicate {
	next := make([]Clause, 0, len(p.clauses)+len(clauses))
	next = append(next, p.clauses...)
	for _, c := range clauses {
		if c != nil {
			next = append(next, c)
		}
	}
	return Predicate{clauses: next}
}

func (p Predicate) Match(project *models.Project) bool {
	for _, c := range p.clauses {
		if !c.Match(project) {
			return false
		}
	}
	return true
}

// Scope renders the predicate as gorm Where conditions, for use with
// db.Scopes(pred.Scope()).
func (p Predicate) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range p.clauses {
			db = c.Apply(db)
		}
		return db
	}
}

func (p Predicate) Len() int {
	return len(p.clauses)
}

//
// clauses
//

type fiscalYearIn []string

func FiscalYearIn(labels ...string) Clause {
	return fiscalYearIn(append([]string(nil), labels...))
}

func (c fiscalYearIn) Match(p *models.Project) bool {
	for _, l := range c {
		if p.FiscalYear == l {
			return true
		}
	}
	return false
}

func (c fiscalYearIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fiscal_year IN ?", []string(c))
}

type statusIn struct {
	statuses []models.ProjectStatus
	negate   bool
}

func StatusIn(statuses ...models.ProjectStatus) Clause {
	return statusIn{statuses: append([]models.ProjectStatus(nil), statuses...)}
}

func StatusNotIn(statuses ...models.ProjectStatus) Clause {
	return statusIn{statuses: append([]models.ProjectStatus(nil), statuses...), negate: true}
}

func (c statusIn) Match(p *models.Project) bool {
	found := false
	for _, s := range c.statuses {
		if p.Status == s {
			found = true
			break
		}
	}
	return found != c.negate
}

func (c statusIn) Apply(db *gorm.DB) *gorm.DB {
	if c.negate {
		return db.Where("status NOT IN ?", c.statuses)
	}
	return db.Where("status IN ?", c.statuses)
}

type orderValuePresent struct{}

func OrderValuePresent() Clause {
	return orderValuePresent{}
}

func (orderValuePresent) Match(p *models.Project) bool {
	return p.OrderValue != nil
}

func (orderValuePresent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_value IS NOT NULL")
}

// stageNotIn lets projects without a recorded stage through.
type stageNotIn []models.ProjectStage

func StageNotIn(stages ...models.ProjectStage) Clause {
	return stageNotIn(append([]models.ProjectStage(nil), stages...))
}

func (c stageNotIn) Match(p *models.Project) bool {
	if p.Stage == nil {
		return true
	}
	for _, s := range c {
		if *p.Stage == s {
			return false
		}
	}
	return true
}

func (c stageNotIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(stage IS NULL OR stage NOT IN ?)", []models.ProjectStage(c))
}

// confirmedWithin is a disjunction of month windows over confirmation_date.
type confirmedWithin []fiscal.Window

func ConfirmedWithin(windows ...fiscal.Window) Clause {
	return confirmedWithin(append([]fiscal.Window(nil), windows...))
}

func (c confirmedWithin) Match(p *models.Project) bool {
	if p.ConfirmationDate == nil || !fiscal.InRange(*p.ConfirmationDate) {
		return false
	}
	for _, w := range c {
		if w.Contains(*p.ConfirmationDate) {
			return true
		}
	}
	return false
}

func (c confirmedWithin) Apply(db *gorm.DB) *gorm.DB {
	if len(c) == 0 {
		return db.Where("1 = 0")
	}
	parts := make([]string, 0, len(c))
	args := make([]interface{}, 0, 2*len(c))
	for _, w := range c {
		parts = append(parts, "(confirmation_date >= ? AND confirmation_date < ?)")
		args = append(args, w.Start, w.End)
	}
	return db.Where("("+strings.Join(parts, " OR ")+")", args...)
}

type salespersonIs uint

// SalespersonIs scopes to projects owned by one sales user.
func SalespersonIs(userID uint) Clause {
	return salespersonIs(userID)
}

func (c salespersonIs) Match(p *models.Project) bool {
	return p.SalespersonID == uint(c)
}

func (c salespersonIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("salesperson_id = ?", uint(c))
}

type customerIs uint

func CustomerIs(customerID uint) Clause {
	return customerIs(customerID)
}

func (c customerIs) Match(p *models.Project) bool {
	return p.CustomerID == uint(c)
}

func (c customerIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("customer_id = ?", uint(c))
}
