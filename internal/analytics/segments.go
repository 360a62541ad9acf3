package analytics

import (
	"slices"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

type SegmentMetrics struct {
	Segment                    models.Segment `json:"segment"`
	TotalRevenue               float64        `json:"total_revenue"`
	CustomerCount              int            `json:"customer_count"`
	TransactionCount           int            `json:"transaction_count"`
	AvgTransactionValue        float64        `json:"avg_transaction_value"`
	AvgTransactionsPerCustomer float64        `json:"avg_transactions_per_customer"`
	ReturnRatePercent          float64        `json:"return_rate_percent"`
	PercentageOfRevenue        float64        `json:"percentage_of_revenue"`
}

type SegmentReport struct {
	Scoped
	Data                 []SegmentMetrics `json:"data"`
	TopSegmentByRevenue  models.Segment   `json:"top_segment_by_revenue"`
	TopSegmentByAvgValue models.Segment   `json:"top_segment_by_avg_value"`
	TotalCustomers       int              `json:"total_customers"`
}

// SegmentComparison compares the new, regular and vip segments, optionally
// within one region.
func (e *Engine) SegmentComparison(p SegmentParams) (*SegmentReport, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	rows, err := e.enrich(e.transactions)
	if err != nil {
		return nil, err
	}

	filters := map[string]any{}
	if p.Region != "" {
		region, err := ParseRegion(p.Region)
		if err != nil {
			return nil, err
		}
		rows = FilterByRegion(rows, region)
		filters["region"] = string(region)
	}

	if len(rows) == 0 {
		return nil, apperrors.NoData("no transactions found for the requested region", "remove the region filter")
	}

	type acc struct {
		SegmentMetrics
		kept, returned int
		customers      map[string]struct{}
	}
	groups := make(map[models.Segment]*acc)
	var total float64
	for _, t := range rows {
		g, ok := groups[t.Segment]
		if !ok {
			g = &acc{SegmentMetrics: SegmentMetrics{Segment: t.Segment}, customers: make(map[string]struct{})}
			groups[t.Segment] = g
		}
		g.TransactionCount++
		g.customers[t.CustomerID] = struct{}{}
		if t.Returned {
			g.returned++
			continue
		}
		g.kept++
		g.TotalRevenue += t.Amount
		total += t.Amount
	}

	data := make([]SegmentMetrics, 0, len(groups))
	customers := 0
	for _, s := range models.Segments {
		g, ok := groups[s]
		if !ok {
			continue
		}
		g.CustomerCount = len(g.customers)
		g.AvgTransactionValue = mean(g.TotalRevenue, g.kept)
		g.AvgTransactionsPerCustomer = mean(float64(g.TransactionCount), g.CustomerCount)
		g.ReturnRatePercent = percent(float64(g.returned), float64(g.TransactionCount))
		g.PercentageOfRevenue = percent(g.TotalRevenue, total)
		customers += g.CustomerCount
		data = append(data, g.SegmentMetrics)
	}

	topAvg := data[0]
	for _, m := range data[1:] {
		if m.AvgTransactionValue > topAvg.AvgTransactionValue {
			topAvg = m
		}
	}

	slices.SortStableFunc(data, func(a, b SegmentMetrics) int {
		return descending(a.TotalRevenue, b.TotalRevenue)
	})

	return &SegmentReport{
		Scoped:               scoped(e.fullRange(), filters, len(rows)),
		Data:                 data,
		TopSegmentByRevenue:  data[0].Segment,
		TopSegmentByAvgValue: topAvg.Segment,
		TotalCustomers:       customers,
	}, nil
}
