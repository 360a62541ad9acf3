package analytics

import (
	"cmp"
	"slices"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

type PaymentMethodMetrics struct {
	PaymentMethod            models.PaymentMethod `json:"payment_method"`
	TotalRevenue             float64              `json:"total_revenue"`
	TransactionCount         int                  `json:"transaction_count"`
	AvgTransactionValue      float64              `json:"avg_transaction_value"`
	PercentageOfTransactions float64              `json:"percentage_of_transactions"`
	ReturnRatePercent        float64              `json:"return_rate_percent"`
}

type PaymentReport struct {
	Scoped
	Data                  []PaymentMethodMetrics `json:"data"`
	TotalRevenue          float64                `json:"total_revenue"`
	MostPopularMethod     models.PaymentMethod   `json:"most_popular_method"`
	HighestAvgValueMethod models.PaymentMethod   `json:"highest_avg_value_method"`
}

// PaymentMethodAnalysis breaks activity down by payment method, most used first.
func (e *Engine) PaymentMethodAnalysis(p PaymentParams) (*PaymentReport, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	txns := e.transactions
	filters := map[string]any{}
	if p.Category != "" {
		var err error
		if txns, err = FilterByCategory(txns, []string{p.Category}); err != nil {
			return nil, err
		}
		filters["category"] = normalizeName(p.Category)
	}

	rows, err := e.enrich(txns)
	if err != nil {
		return nil, err
	}
	if p.Region != "" {
		region, err := ParseRegion(p.Region)
		if err != nil {
			return nil, err
		}
		rows = FilterByRegion(rows, region)
		filters["region"] = string(region)
	}

	if len(rows) == 0 {
		return nil, apperrors.NoData("no transactions match the requested category and region",
			"remove the category filter",
			"remove the region filter",
		)
	}

	type acc struct {
		PaymentMethodMetrics
		kept, returned int
	}
	groups := make(map[models.PaymentMethod]*acc)
	var total float64
	for _, t := range rows {
		g, ok := groups[t.PaymentMethod]
		if !ok {
			g = &acc{PaymentMethodMetrics: PaymentMethodMetrics{PaymentMethod: t.PaymentMethod}}
			groups[t.PaymentMethod] = g
		}
		g.TransactionCount++
		if t.Returned {
			g.returned++
			continue
		}
		g.kept++
		g.TotalRevenue += t.Amount
		total += t.Amount
	}

	data := make([]PaymentMethodMetrics, 0, len(groups))
	for _, pm := range models.PaymentMethods {
		g, ok := groups[pm]
		if !ok {
			continue
		}
		g.AvgTransactionValue = mean(g.TotalRevenue, g.kept)
		g.PercentageOfTransactions = percent(float64(g.TransactionCount), float64(len(rows)))
		g.ReturnRatePercent = percent(float64(g.returned), float64(g.TransactionCount))
		data = append(data, g.PaymentMethodMetrics)
	}

	highestAvg := data[0]
	for _, m := range data[1:] {
		if m.AvgTransactionValue > highestAvg.AvgTransactionValue {
			highestAvg = m
		}
	}

	slices.SortStableFunc(data, func(a, b PaymentMethodMetrics) int {
		return cmp.Compare(b.TransactionCount, a.TransactionCount)
	})

	return &PaymentReport{
		Scoped:                scoped(e.fullRange(), filters, len(rows)),
		Data:                  data,
		TotalRevenue:          total,
		MostPopularMethod:     data[0].PaymentMethod,
		HighestAvgValueMethod: highestAvg.PaymentMethod,
	}, nil
}
