package analytics

import (
	"slices"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

type CategoryReturns struct {
	Category             models.Category `json:"category"`
	TotalTransactions    int             `json:"total_transactions"`
	ReturnedCount        int             `json:"returned_count"`
	ReturnRatePercent    float64         `json:"return_rate_percent"`
	RevenueLostToReturns float64         `json:"revenue_lost_to_returns"`
}

type ReturnRateReport struct {
	Scoped
	Data                  []CategoryReturns `json:"data"`
	OverallReturnRate     float64           `json:"overall_return_rate"`
	HighestReturnCategory models.Category   `json:"highest_return_category"`
	TotalRevenueLost      float64           `json:"total_revenue_lost"`
}

// ReturnRateByCategory reports, for every category present, how many
// transactions were returned and the amount those returns represent.
func (e *Engine) ReturnRateByCategory(p ReturnRateParams) (*ReturnRateReport, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	rows := e.transactions
	filters := map[string]any{}
	if p.Category != "" {
		var err error
		if rows, err = FilterByCategory(rows, []string{p.Category}); err != nil {
			return nil, err
		}
		filters["category"] = normalizeName(p.Category)
	}

	if len(rows) == 0 {
		return nil, apperrors.NoData("no transactions found for the requested category",
			"remove the category filter",
		)
	}

	groups := make(map[models.Category]*CategoryReturns)
	var returned int
	var lost float64
	for _, t := range rows {
		g, ok := groups[t.Category]
		if !ok {
			g = &CategoryReturns{Category: t.Category}
			groups[t.Category] = g
		}
		g.TotalTransactions++
		if t.Returned {
			g.ReturnedCount++
			g.RevenueLostToReturns += t.Amount
			returned++
			lost += t.Amount
		}
	}

	data := make([]CategoryReturns, 0, len(groups))
	for _, c := range models.Categories {
		if g, ok := groups[c]; ok {
			g.ReturnRatePercent = percent(float64(g.ReturnedCount), float64(g.TotalTransactions))
			data = append(data, *g)
		}
	}
	slices.SortStableFunc(data, func(a, b CategoryReturns) int {
		return descending(a.ReturnRatePercent, b.ReturnRatePercent)
	})

	return &ReturnRateReport{
		Scoped:                scoped(e.fullRange(), filters, len(rows)),
		Data:                  data,
		OverallReturnRate:     percent(float64(returned), float64(len(rows))),
		HighestReturnCategory: data[0].Category,
		TotalRevenueLost:      lost,
	}, nil
}
