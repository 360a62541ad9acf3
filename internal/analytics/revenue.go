package analytics

import (
	"slices"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

type CategoryRevenue struct {
	Category            models.Category `json:"category"`
	TotalRevenue        float64         `json:"total_revenue"`
	TransactionCount    int             `json:"transaction_count"`
	AvgTransactionValue float64         `json:"avg_transaction_value"`
	PercentageOfTotal   float64         `json:"percentage_of_total"`
}

type RevenueReport struct {
	Scoped
	Data         []CategoryRevenue `json:"data"`
	TotalRevenue float64           `json:"total_revenue"`
	TopCategory  models.Category   `json:"top_category"`
}

// RevenueByCategory sums non-returned revenue per category within the
// requested date range, ordered by revenue with ties in enumeration order.
func (e *Engine) RevenueByCategory(p RevenueParams) (*RevenueReport, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	r, err := ResolveDateRange(p.StartDate, p.EndDate, e.boundaries)
	if err != nil {
		return nil, err
	}

	rows := FilterByDateRange(ExcludeReturns(e.transactions), r)
	rows, err = FilterByCategory(rows, p.Categories)
	if err != nil {
		return nil, err
	}

	filters := map[string]any{}
	if len(p.Categories) > 0 {
		filters["categories"] = normalizeNames(p.Categories)
	}

	if len(rows) == 0 {
		return nil, apperrors.NoData("no transactions match the requested date range and categories",
			"widen the date range",
			"remove the category filter",
		)
	}

	groups := make(map[models.Category]*CategoryRevenue)
	var total float64
	for _, t := range rows {
		g, ok := groups[t.Category]
		if !ok {
			g = &CategoryRevenue{Category: t.Category}
			groups[t.Category] = g
		}
		g.TotalRevenue += t.Amount
		g.TransactionCount++
		total += t.Amount
	}

	data := make([]CategoryRevenue, 0, len(groups))
	for _, c := range models.Categories {
		g, ok := groups[c]
		if !ok {
			continue
		}
		g.AvgTransactionValue = mean(g.TotalRevenue, g.TransactionCount)
		g.PercentageOfTotal = percent(g.TotalRevenue, total)
		data = append(data, *g)
	}
	// Stable sort keeps enumeration order for equal revenue.
	slices.SortStableFunc(data, func(a, b CategoryRevenue) int {
		return descending(a.TotalRevenue, b.TotalRevenue)
	})

	return &RevenueReport{
		Scoped:       scoped(r, filters, len(rows)),
		Data:         data,
		TotalRevenue: total,
		TopCategory:  data[0].Category,
	}, nil
}

// descending orders larger values first.
func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
