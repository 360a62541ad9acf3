package analytics

import (
	"cmp"
	"fmt"
	"slices"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

type CustomerValue struct {
	CustomerID          string         `json:"customer_id"`
	TotalSpent          float64        `json:"total_spent"`
	TransactionCount    int            `json:"transaction_count"`
	AvgTransactionValue float64        `json:"avg_transaction_value"`
	Region              models.Region  `json:"region"`
	Segment             models.Segment `json:"segment"`
	Rank                int            `json:"rank"`
}

type LTVReport struct {
	Scoped
	Data                   []CustomerValue `json:"data"`
	AverageLTV             float64         `json:"average_ltv"`
	TotalCustomersAnalyzed int             `json:"total_customers_analyzed"`
}

// CustomerLTV ranks customers by non-returned spend. Customers with fewer
// than MinTransactions qualifying purchases are left out of both the ranking
// and the average.
func (e *Engine) CustomerLTV(p LTVParams) (*LTVReport, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	rows, err := e.enrich(ExcludeReturns(e.transactions))
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
	if p.Segment != "" {
		segment, err := ParseSegment(p.Segment)
		if err != nil {
			return nil, err
		}
		rows = FilterBySegment(rows, segment)
		filters["segment"] = string(segment)
	}
	if p.MinTransactions > 1 {
		filters["min_transactions"] = p.MinTransactions
	}

	groups := make(map[string]*CustomerValue)
	for _, t := range rows {
		g, ok := groups[t.CustomerID]
		if !ok {
			g = &CustomerValue{CustomerID: t.CustomerID, Region: t.Region, Segment: t.Segment}
			groups[t.CustomerID] = g
		}
		g.TotalSpent += t.Amount
		g.TransactionCount++
	}

	ranked := make([]CustomerValue, 0, len(groups))
	for _, g := range groups {
		if g.TransactionCount < p.MinTransactions {
			continue
		}
		g.AvgTransactionValue = mean(g.TotalSpent, g.TransactionCount)
		ranked = append(ranked, *g)
	}

	if len(ranked) == 0 {
		suggestions := []string{"remove the region or segment filter"}
		if p.MinTransactions > 1 {
			suggestions = append(suggestions, fmt.Sprintf("lower min_transactions below %d", p.MinTransactions))
		}
		return nil, apperrors.NoData("no customers match the requested filters", suggestions...)
	}

	slices.SortFunc(ranked, func(a, b CustomerValue) int {
		if c := descending(a.TotalSpent, b.TotalSpent); c != 0 {
			return c
		}
		return cmp.Compare(a.CustomerID, b.CustomerID)
	})

	// Averages follow rank order so the result does not depend on map iteration.
	var total float64
	for i := range ranked {
		ranked[i].Rank = i + 1
		total += ranked[i].TotalSpent
	}

	top := ranked[:min(p.TopN, len(ranked))]
	r := e.fullRange()

	return &LTVReport{
		Scoped:                 scoped(r, filters, len(top)),
		Data:                   slices.Clone(top),
		AverageLTV:             mean(total, len(ranked)),
		TotalCustomersAnalyzed: len(ranked),
	}, nil
}
