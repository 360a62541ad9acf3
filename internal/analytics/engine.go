// Package analytics computes the business reports served by the tool layer.
// Every operation is a pure function of the loaded dataset and its
// parameters; repeated calls return identical results.
package analytics

import (
	"encoding/json"
	"time"

	"shop-insights/internal/dataset"
	"shop-insights/internal/models"
)

type Engine struct {
	ds           *dataset.Dataset
	transactions []models.Transaction
	customers    map[string]models.Customer
	boundaries   dataset.Boundaries
}

func New(ds *dataset.Dataset) *Engine {
	return &Engine{
		ds:           ds,
		transactions: ds.Transactions(),
		customers:    ds.CustomersByID(),
		boundaries:   ds.Boundaries(),
	}
}

func (e *Engine) Dataset() *dataset.Dataset { return e.ds }
func (e *Engine) Boundaries() dataset.Boundaries { return e.boundaries }

// DateRange is an inclusive range of whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{r.Start.Format(models.DateLayout), r.End.Format(models.DateLayout)})
}

// Scope describes what a report was computed over.
type Scope struct {
	DateRange   DateRange
	Filters     map[string]any
	RecordCount int
}

// Scoped is embedded by every report. It carries the scope without adding
// anything to the report's JSON.
type Scoped struct {
	scope Scope
}

func (s Scoped) Scope() Scope { return s.scope }

func scoped(r DateRange, filters map[string]any, records int) Scoped {
	if filters == nil {
		filters = map[string]any{}
	}
	return Scoped{scope: Scope{DateRange: r, Filters: filters, RecordCount: records}}
}

// fullRange is the whole loaded data range.
func (e *Engine) fullRange() DateRange {
	return DateRange{Start: e.boundaries.DataStart, End: e.boundaries.DataEnd}
}

// enrich joins every transaction with its customer. The dataset guarantees
// referential integrity, so a failure here means the engine was built from
// inconsistent tables.
func (e *Engine) enrich(txns []models.Transaction) ([]models.EnrichedTransaction, error) {
	return JoinCustomerAttributes(txns, e.customers)
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * part / whole
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
