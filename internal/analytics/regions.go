package analytics

import (
	"slices"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

type RegionMetrics struct {
	Region              models.Region `json:"region"`
	TotalRevenue        float64       `json:"total_revenue"`
	CustomerCount       int           `json:"customer_count"`
	TransactionCount    int           `json:"transaction_count"`
	AvgTransactionValue float64       `json:"avg_transaction_value"`
	ReturnRatePercent   float64       `json:"return_rate_percent"`
}

type RegionReport struct {
	Scoped
	Data                 []RegionMetrics `json:"data"`
	TopRegionByRevenue   models.Region   `json:"top_region_by_revenue"`
	TopRegionByCustomers models.Region   `json:"top_region_by_customers"`
}

type regionAcc struct {
	RegionMetrics
	kept      int
	returned  int
	customers map[string]struct{}
}

// CompareRegions reports revenue and activity per customer region. Revenue
// and average order value exclude returns; counts and return rate use every row.
func (e *Engine) CompareRegions() (*RegionReport, error) {
	rows, err := e.enrich(e.transactions)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NoData("dataset has no transactions")
	}

	groups := make(map[models.Region]*regionAcc)
	for _, t := range rows {
		g, ok := groups[t.Region]
		if !ok {
			g = &regionAcc{RegionMetrics: RegionMetrics{Region: t.Region}, customers: make(map[string]struct{})}
			groups[t.Region] = g
		}
		g.TransactionCount++
		g.customers[t.CustomerID] = struct{}{}
		if t.Returned {
			g.returned++
			continue
		}
		g.kept++
		g.TotalRevenue += t.Amount
	}

	data := make([]RegionMetrics, 0, len(groups))
	for _, r := range models.Regions {
		g, ok := groups[r]
		if !ok {
			continue
		}
		g.CustomerCount = len(g.customers)
		g.AvgTransactionValue = mean(g.TotalRevenue, g.kept)
		g.ReturnRatePercent = percent(float64(g.returned), float64(g.TransactionCount))
		data = append(data, g.RegionMetrics)
	}

	// data is in enumeration order here, so the first maximum wins ties.
	topByCustomers := data[0]
	for _, m := range data[1:] {
		if m.CustomerCount > topByCustomers.CustomerCount {
			topByCustomers = m
		}
	}

	slices.SortStableFunc(data, func(a, b RegionMetrics) int {
		return descending(a.TotalRevenue, b.TotalRevenue)
	})

	return &RegionReport{
		Scoped:               scoped(e.fullRange(), nil, len(rows)),
		Data:                 data,
		TopRegionByRevenue:   data[0].Region,
		TopRegionByCustomers: topByCustomers.Region,
	}, nil
}
