package analytics

import (
	"fmt"
	"math"
	"time"

	"shop-insights/internal/dataset"
	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

const (
	TrendGrowth  = "growth"
	TrendDecline = "decline"
	TrendFlat    = "flat"
)

// flatThreshold is the absolute revenue change, in percent, below which two
// periods count as flat.
const flatThreshold = 1.0

type PeriodMetrics struct {
	PeriodLabel         string  `json:"period_label"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	Revenue             float64 `json:"revenue"`
	TransactionCount    int     `json:"transaction_count"`
	UniqueCustomers     int     `json:"unique_customers"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
}

type PeriodComparison struct {
	Scoped
	PeriodLabel              string        `json:"period_label"`
	CurrentPeriod            PeriodMetrics `json:"current_period"`
	PreviousPeriod           PeriodMetrics `json:"previous_period"`
	RevenueChangePercent     *float64      `json:"revenue_change_percent"`
	TransactionChangePercent *float64      `json:"transaction_change_percent"`
	CustomerChangePercent    *float64      `json:"customer_change_percent"`
	Trend                    string        `json:"trend"`
}

// ComparePeriods compares return-excluded activity between two date ranges.
// Explicit ranges win when all four bounds are given; otherwise the label
// selects calendar periods anchored at the reference date (default: the last
// data day). The anchored current period is partial, running from the start
// of its month or quarter to the anchor.
func (e *Engine) ComparePeriods(p PeriodParams) (*PeriodComparison, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	label, current, previous, err := e.resolvePeriods(p)
	if err != nil {
		return nil, err
	}

	rows := ExcludeReturns(e.transactions)
	cur := periodMetrics("current", FilterByDateRange(rows, current), current)
	prev := periodMetrics("previous", FilterByDateRange(rows, previous), previous)

	if cur.TransactionCount == 0 && prev.TransactionCount == 0 {
		return nil, apperrors.NoData(
			fmt.Sprintf("no transactions between %s and %s", prev.StartDate, cur.EndDate),
			fmt.Sprintf("data is available from %s to %s",
				e.boundaries.DataStart.Format(models.DateLayout), e.boundaries.DataEnd.Format(models.DateLayout)),
		)
	}

	revenueChange := changePercent(cur.Revenue, prev.Revenue)

	filters := map[string]any{"period_label": label}
	if p.ReferenceDate != "" && label != PeriodCustom {
		filters["reference_date"] = p.ReferenceDate
	}
	span := DateRange{Start: earliest(current.Start, previous.Start), End: latest(current.End, previous.End)}

	return &PeriodComparison{
		Scoped:                   scoped(span, filters, cur.TransactionCount+prev.TransactionCount),
		PeriodLabel:              label,
		CurrentPeriod:            cur,
		PreviousPeriod:           prev,
		RevenueChangePercent:     revenueChange,
		TransactionChangePercent: changePercent(float64(cur.TransactionCount), float64(prev.TransactionCount)),
		CustomerChangePercent:    changePercent(float64(cur.UniqueCustomers), float64(prev.UniqueCustomers)),
		Trend:                    trend(revenueChange, cur.Revenue),
	}, nil
}

func (e *Engine) resolvePeriods(p PeriodParams) (label string, current, previous DateRange, err error) {
	bounds := []string{p.CurrentStart, p.CurrentEnd, p.PreviousStart, p.PreviousEnd}
	given := 0
	for _, b := range bounds {
		if b != "" {
			given++
		}
	}

	switch {
	case given == len(bounds):
		if current, err = explicitRange("current", p.CurrentStart, p.CurrentEnd); err != nil {
			return "", DateRange{}, DateRange{}, err
		}
		if previous, err = explicitRange("previous", p.PreviousStart, p.PreviousEnd); err != nil {
			return "", DateRange{}, DateRange{}, err
		}
		return PeriodCustom, current, previous, nil
	case given > 0:
		return "", DateRange{}, DateRange{}, apperrors.InvalidInput(
			"explicit periods need all of current_start, current_end, previous_start and previous_end",
			"provide all four dates",
			"or use period_label month_over_month or quarter_over_quarter without dates",
		)
	}

	anchor := e.boundaries
	if p.ReferenceDate != "" {
		ref, err := parseDate("reference_date", p.ReferenceDate)
		if err != nil {
			return "", DateRange{}, DateRange{}, err
		}
		if !e.boundaries.Contains(ref) {
			return "", DateRange{}, DateRange{}, apperrors.InvalidInput(
				fmt.Sprintf("reference_date %s is outside the data range", p.ReferenceDate),
				fmt.Sprintf("use a date between %s and %s",
					e.boundaries.DataStart.Format(models.DateLayout), e.boundaries.DataEnd.Format(models.DateLayout)),
			)
		}
		anchor = e.boundaries.AnchoredAt(ref)
	}

	label = normalizePeriodLabel(p.PeriodLabel)
	if current, previous, ok := periodsFor(label, anchor); ok {
		return label, current, previous, nil
	}

	return "", DateRange{}, DateRange{}, apperrors.InvalidInput(
		"a custom comparison needs current_start, current_end, previous_start and previous_end",
		"set period_label to month_over_month or quarter_over_quarter",
		"or provide all four dates",
	)
}

func normalizePeriodLabel(label string) string {
	label = normalizeName(label)
	switch label {
	case "mom", PeriodMonthOverMonth:
		return PeriodMonthOverMonth
	case "qoq", PeriodQuarterOverQuarter:
		return PeriodQuarterOverQuarter
	case "":
		return PeriodCustom
	}
	return label
}

func explicitRange(name, start, end string) (DateRange, error) {
	s, err := parseDate(name+"_start", start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := parseDate(name+"_end", end)
	if err != nil {
		return DateRange{}, err
	}
	if s.After(e) {
		return DateRange{}, apperrors.InvalidInput(
			fmt.Sprintf("%s_start %s is after %s_end %s", name, start, name, end),
			"swap the two dates",
		)
	}
	return DateRange{Start: s, End: e}, nil
}

func periodMetrics(label string, rows []models.Transaction, r DateRange) PeriodMetrics {
	m := PeriodMetrics{
		PeriodLabel: label,
		StartDate:   r.Start.Format(models.DateLayout),
		EndDate:     r.End.Format(models.DateLayout),
	}
	customers := make(map[string]struct{})
	for _, t := range rows {
		m.Revenue += t.Amount
		m.TransactionCount++
		customers[t.CustomerID] = struct{}{}
	}
	m.UniqueCustomers = len(customers)
	m.AvgTransactionValue = mean(m.Revenue, m.TransactionCount)
	return m
}

// changePercent is nil when the previous value is zero.
func changePercent(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := 100 * (current - previous) / previous
	return &v
}

func trend(change *float64, currentRevenue float64) string {
	if change == nil {
		if currentRevenue > 0 {
			return TrendGrowth
		}
		return TrendFlat
	}
	switch {
	case math.Abs(*change) < flatThreshold:
		return TrendFlat
	case *change > 0:
		return TrendGrowth
	}
	return TrendDecline
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// periodsFor resolves a calendar label against anchored boundaries.
func periodsFor(label string, b dataset.Boundaries) (current, previous DateRange, ok bool) {
	switch label {
	case PeriodMonthOverMonth:
		return DateRange{b.CurrentMonthStart, b.CurrentMonthEnd}, DateRange{b.PreviousMonthStart, b.PreviousMonthEnd}, true
	case PeriodQuarterOverQuarter:
		return DateRange{b.CurrentQuarterStart, b.DataEnd}, DateRange{b.PreviousQuarterStart, b.PreviousQuarterEnd}, true
	}
	return DateRange{}, DateRange{}, false
}
