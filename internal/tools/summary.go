package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"shop-insights/internal/analytics"
	"shop-insights/internal/models"
)

// Printers and casers carry state, so each call builds its own.
func sprintf(format string, args ...any) string {
	return message.NewPrinter(language.English).Sprintf(format, args...)
}

// money renders an amount rounded half away from zero to cents, with
// thousands separators.
func money(v float64) string {
	return sprintf("$%.2f", decimal.NewFromFloat(v).Round(2).InexactFloat64())
}

func pct(v float64) string {
	return sprintf("%.1f%%", decimal.NewFromFloat(v).Round(1).InexactFloat64())
}

func day(t time.Time) string {
	return t.Format(models.DateLayout)
}

func count(n int) string {
	return sprintf("%d", n)
}

// label turns an enumeration value into display text.
func label[T ~string](v T) string {
	if v == "vip" {
		return "VIP"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(v), "_", " "))
}

func summarizeRevenue(r *analytics.RevenueReport) string {
	top := r.Data[0]
	s := r.Scope()
	return fmt.Sprintf("%s leads with %s (%s of %s total revenue) across %d categories from %s to %s.",
		label(top.Category), money(top.TotalRevenue), pct(top.PercentageOfTotal), money(r.TotalRevenue),
		len(r.Data), day(s.DateRange.Start), day(s.DateRange.End))
}

func summarizeLTV(r *analytics.LTVReport) string {
	top := r.Data[0]
	return fmt.Sprintf("Top %d customers by lifetime value. #1 is %s (%s, %s) with %s from %s transactions. Average LTV across %s customers is %s.",
		len(r.Data), top.CustomerID, label(top.Region), label(top.Segment), money(top.TotalSpent),
		count(top.TransactionCount), count(r.TotalCustomersAnalyzed), money(r.AverageLTV))
}

func summarizeReturns(r *analytics.ReturnRateReport) string {
	top := r.Data[0]
	return fmt.Sprintf("Overall return rate is %s with %s lost to returns. %s has the highest return rate at %s (%s of %s transactions).",
		pct(r.OverallReturnRate), money(r.TotalRevenueLost), label(top.Category), pct(top.ReturnRatePercent),
		count(top.ReturnedCount), count(top.TotalTransactions))
}

func summarizeRegions(r *analytics.RegionReport) string {
	top := r.Data[0]
	var customers int
	for _, m := range r.Data {
		if m.Region == r.TopRegionByCustomers {
			customers = m.CustomerCount
		}
	}
	return fmt.Sprintf("%s leads in revenue with %s from %s transactions (average order %s). %s has the most customers (%s).",
		label(top.Region), money(top.TotalRevenue), count(top.TransactionCount), money(top.AvgTransactionValue),
		label(r.TopRegionByCustomers), count(customers))
}

func summarizePeriods(r *analytics.PeriodComparison) string {
	cur, prev := r.CurrentPeriod, r.PreviousPeriod
	var change string
	switch {
	case r.RevenueChangePercent == nil:
		change = "Revenue has no baseline to compare against"
	case *r.RevenueChangePercent > 0:
		change = "Revenue is up " + pct(*r.RevenueChangePercent)
	case *r.RevenueChangePercent < 0:
		change = "Revenue is down " + pct(-*r.RevenueChangePercent)
	default:
		change = "Revenue is unchanged"
	}
	return fmt.Sprintf("%s (%s). Current %s to %s: %s from %s transactions. Previous %s to %s: %s from %s transactions. Trend: %s.",
		change, strings.ReplaceAll(r.PeriodLabel, "_", " "),
		cur.StartDate, cur.EndDate, money(cur.Revenue), count(cur.TransactionCount),
		prev.StartDate, prev.EndDate, money(prev.Revenue), count(prev.TransactionCount),
		r.Trend)
}

func summarizeOverview(r *analytics.DataOverview) string {
	return fmt.Sprintf("Dataset contains %s transactions from %s customers, spanning %s to %s.",
		count(r.TransactionCount), count(r.CustomerCount), r.DataStart, r.DataEnd)
}

func summarizePayments(r *analytics.PaymentReport) string {
	top := r.Data[0]
	var highest float64
	for _, m := range r.Data {
		if m.PaymentMethod == r.HighestAvgValueMethod {
			highest = m.AvgTransactionValue
		}
	}
	return fmt.Sprintf("Most popular payment method is %s with %s of transactions. Highest average order value: %s (%s). Total revenue: %s.",
		label(top.PaymentMethod), pct(top.PercentageOfTransactions), label(r.HighestAvgValueMethod), money(highest), money(r.TotalRevenue))
}

func summarizeSegments(r *analytics.SegmentReport) string {
	top := r.Data[0]
	var highest float64
	for _, m := range r.Data {
		if m.Segment == r.TopSegmentByAvgValue {
			highest = m.AvgTransactionValue
		}
	}
	return fmt.Sprintf("%s customers lead in revenue with %s (%s of total). %s has the highest average transaction (%s). Total customers: %s.",
		label(top.Segment), money(top.TotalRevenue), pct(top.PercentageOfRevenue),
		label(r.TopSegmentByAvgValue), money(highest), count(r.TotalCustomers))
}

func summarizeTrends(r *analytics.TrendReport) string {
	var best float64
	for _, m := range r.Data {
		if m.Month == r.BestMonth {
			best = m.Revenue
		}
	}
	return fmt.Sprintf("Revenue over %d months totals %s, averaging %s per month. Best month: %s (%s). Overall trend: %s.",
		len(r.Data), money(r.TotalRevenue), money(r.AvgMonthlyRevenue), r.BestMonth, money(best), r.OverallTrend)
}

func summarizeCapabilities(r *analytics.CapabilityReport) string {
	names := make([]string, 0, len(r.Data))
	for _, c := range r.Data {
		names = append(names, c.ToolName)
	}
	return fmt.Sprintf("%d analytics tools are available: %s.", r.TotalTools, strings.Join(names, ", "))
}
