package analytics

import (
	"shop-insights/internal/dataset"
	apperrors "shop-insights/internal/errors"
)

const (
	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Overall trend needs at least this many months; the halves must differ by
// more than trendThreshold percent.
const (
	minTrendMonths = 4
	trendThreshold = 10.0
)

type MonthlyRevenue struct {
	Month               string  `json:"month"`
	Revenue             float64 `json:"revenue"`
	TransactionCount    int     `json:"transaction_count"`
	UniqueCustomers     int     `json:"unique_customers"`
	AvgTransactionValue float64 `json:"avg_transaction_value"`
}

type TrendReport struct {
	Scoped
	Data              []MonthlyRevenue `json:"data"`
	TotalRevenue      float64          `json:"total_revenue"`
	BestMonth         string           `json:"best_month"`
	WorstMonth        string           `json:"worst_month"`
	AvgMonthlyRevenue float64          `json:"avg_monthly_revenue"`
	OverallTrend      string           `json:"overall_trend"`
}

// RevenueTrends returns return-excluded revenue per calendar month in
// chronological order. Months without sales are omitted.
func (e *Engine) RevenueTrends(p TrendParams) (*TrendReport, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	rows := ExcludeReturns(e.transactions)
	filters := map[string]any{}
	if p.Category != "" {
		var err error
		if rows, err = FilterByCategory(rows, []string{p.Category}); err != nil {
			return nil, err
		}
		filters["category"] = normalizeName(p.Category)
	}

	if len(rows) == 0 {
		return nil, apperrors.NoData("no transactions found for the requested category", "remove the category filter")
	}

	type acc struct {
		MonthlyRevenue
		customers map[string]struct{}
	}
	groups := make(map[string]*acc)
	for _, t := range rows {
		key := t.Date.Format("2006-01")
		g, ok := groups[key]
		if !ok {
			g = &acc{MonthlyRevenue: MonthlyRevenue{Month: key}, customers: make(map[string]struct{})}
			groups[key] = g
		}
		g.Revenue += t.Amount
		g.TransactionCount++
		g.customers[t.CustomerID] = struct{}{}
	}

	// Walk the calendar rather than sorting keys so the order is chronological by construction.
	data := make([]MonthlyRevenue, 0, len(groups))
	var total float64
	for m := dataset.MonthStart(e.boundaries.DataStart); len(data) < len(groups); m = m.AddDate(0, 1, 0) {
		g, ok := groups[m.Format("2006-01")]
		if !ok {
			continue
		}
		g.UniqueCustomers = len(g.customers)
		g.AvgTransactionValue = mean(g.Revenue, g.TransactionCount)
		total += g.Revenue
		data = append(data, g.MonthlyRevenue)
	}

	best, worst := data[0], data[0]
	for _, m := range data[1:] {
		if m.Revenue > best.Revenue {
			best = m
		}
		if m.Revenue < worst.Revenue {
			worst = m
		}
	}

	return &TrendReport{
		Scoped:            scoped(e.fullRange(), filters, len(rows)),
		Data:              data,
		TotalRevenue:      total,
		BestMonth:         best.Month,
		WorstMonth:        worst.Month,
		AvgMonthlyRevenue: mean(total, len(data)),
		OverallTrend:      overallTrend(data),
	}, nil
}

// overallTrend compares the average revenue of the first and second halves.
func overallTrend(months []MonthlyRevenue) string {
	if len(months) < minTrendMonths {
		return TrendStable
	}

	mid := len(months) / 2
	var first, second float64
	for _, m := range months[:mid] {
		first += m.Revenue
	}
	for _, m := range months[mid:] {
		second += m.Revenue
	}
	first /= float64(mid)
	second /= float64(len(months) - mid)

	if first <= 0 {
		return TrendStable
	}
	switch change := 100 * (second - first) / first; {
	case change > trendThreshold:
		return TrendGrowing
	case change < -trendThreshold:
		return TrendDeclining
	}
	return TrendStable
}
