package handlers

import (
	"fmt"
	"strconv"

	"shop-insights/internal/analytics"
	"shop-insights/internal/ui/templates"
)

// maxTableRows caps every dashboard table.
const maxTableRows = 12

// panel binds a dashboard card to a tool and knows how to tabulate its report.
type panel struct {
	templates.Panel
	headers []string
	rows    func(data any) []templates.Row
}

func money(v float64) string   { return fmt.Sprintf("$%.2f", v) }
func percent(v float64) string { return fmt.Sprintf("%.1f%%", v) }
func count(n int) string       { return strconv.Itoa(n) }

var dashboardPanels = []panel{
	{
		Panel:   templates.Panel{Tool: analytics.ToolRevenueByCategory, Title: "Revenue by Category"},
		headers: []string{"Category", "Revenue", "Orders", "Avg Order", "Share"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.RevenueReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, c := range r.Data {
				out = append(out, templates.Row{string(c.Category), money(c.TotalRevenue), count(c.TransactionCount), money(c.AvgTransactionValue), percent(c.PercentageOfTotal)})
			}
			return out
		},
	},
	{
		Panel:   templates.Panel{Tool: analytics.ToolCompareRegions, Title: "Regions"},
		headers: []string{"Region", "Revenue", "Customers", "Orders", "Return Rate"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.RegionReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, m := range r.Data {
				out = append(out, templates.Row{string(m.Region), money(m.TotalRevenue), count(m.CustomerCount), count(m.TransactionCount), percent(m.ReturnRatePercent)})
			}
			return out
		},
	},
	{
		Panel:   templates.Panel{Tool: analytics.ToolReturnRates, Title: "Returns"},
		headers: []string{"Category", "Orders", "Returned", "Rate", "Lost"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.ReturnRateReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, c := range r.Data {
				out = append(out, templates.Row{string(c.Category), count(c.TotalTransactions), count(c.ReturnedCount), percent(c.ReturnRatePercent), money(c.RevenueLostToReturns)})
			}
			return out
		},
	},
	{
		Panel:   templates.Panel{Tool: analytics.ToolCustomerLTV, Title: "Top Customers"},
		headers: []string{"#", "Customer", "Region", "Segment", "Lifetime Value"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.LTVReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, c := range r.Data {
				out = append(out, templates.Row{count(c.Rank), c.CustomerID, string(c.Region), string(c.Segment), money(c.TotalSpent)})
			}
			return out
		},
	},
	{
		Panel:   templates.Panel{Tool: analytics.ToolSegments, Title: "Segments"},
		headers: []string{"Segment", "Revenue", "Customers", "Avg Order", "Share"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.SegmentReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, m := range r.Data {
				out = append(out, templates.Row{string(m.Segment), money(m.TotalRevenue), count(m.CustomerCount), money(m.AvgTransactionValue), percent(m.PercentageOfRevenue)})
			}
			return out
		},
	},
	{
		Panel:   templates.Panel{Tool: analytics.ToolPaymentMethods, Title: "Payment Methods"},
		headers: []string{"Method", "Orders", "Share", "Revenue", "Avg Order"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.PaymentReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, m := range r.Data {
				out = append(out, templates.Row{string(m.PaymentMethod), count(m.TransactionCount), percent(m.PercentageOfTransactions), money(m.TotalRevenue), money(m.AvgTransactionValue)})
			}
			return out
		},
	},
	{
		Panel:   templates.Panel{Tool: analytics.ToolRevenueTrends, Title: "Monthly Revenue"},
		headers: []string{"Month", "Revenue", "Orders", "Customers"},
		rows: func(data any) []templates.Row {
			r := data.(*analytics.TrendReport)
			out := make([]templates.Row, 0, len(r.Data))
			for _, m := range r.Data {
				out = append(out, templates.Row{m.Month, money(m.Revenue), count(m.TransactionCount), count(m.UniqueCustomers)})
			}
			return out
		},
	},
}

// lookupPanel returns the dashboard panel for a tool, if it has one.
func lookupPanel(tool string) (panel, bool) {
	for _, p := range dashboardPanels {
		if p.Tool == tool {
			return p, true
		}
	}
	return panel{}, false
}

// Panels lists the dashboard cards in display order.
func Panels() []templates.Panel {
	out := make([]templates.Panel, len(dashboardPanels))
	for i, p := range dashboardPanels {
		out[i] = p.Panel
	}
	return out
}
