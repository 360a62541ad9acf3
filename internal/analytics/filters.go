package analytics

import (
	"fmt"
	"strings"
	"time"

	"shop-insights/internal/dataset"
	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

// ResolveDateRange turns optional ISO bounds into a concrete range. Empty
// bounds default to the loaded data range.
func ResolveDateRange(start, end string, b dataset.Boundaries) (DateRange, error) {
	r := DateRange{Start: b.DataStart, End: b.DataEnd}

	if start != "" {
		t, err := parseDate("start_date", start)
		if err != nil {
			return DateRange{}, err
		}
		r.Start = t
	}
	if end != "" {
		t, err := parseDate("end_date", end)
		if err != nil {
			return DateRange{}, err
		}
		r.End = t
	}

	if r.Start.After(r.End) {
		return DateRange{}, apperrors.InvalidInput(
			fmt.Sprintf("start_date %s is after end_date %s", r.Start.Format(models.DateLayout), r.End.Format(models.DateLayout)),
			fmt.Sprintf("data is available from %s to %s", b.DataStart.Format(models.DateLayout), b.DataEnd.Format(models.DateLayout)),
		)
	}
	return r, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(
			fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD", field, value),
			"use a date like 2024-01-31",
		)
	}
	return t, nil
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange keeps transactions dated within r, both ends inclusive.
func FilterByDateRange(txns []models.Transaction, r DateRange) []models.Transaction {
	return filter(txns, func(t models.Transaction) bool { return r.Contains(t.Date) })
}

// FilterByCategory keeps transactions in any of the named categories. An empty
// list keeps everything.
func FilterByCategory(txns []models.Transaction, categories []string) ([]models.Transaction, error) {
	if len(categories) == 0 {
		return filter(txns, func(models.Transaction) bool { return true }), nil
	}

	wanted := make(map[models.Category]bool, len(categories))
	for _, name := range categories {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		wanted[c] = true
	}
	return filter(txns, func(t models.Transaction) bool { return wanted[t.Category] }), nil
}

// ExcludeReturns drops returned transactions. Only revenue-bearing
// aggregations use it; counts and return rates keep every row.
func ExcludeReturns(txns []models.Transaction) []models.Transaction {
	return filter(txns, func(t models.Transaction) bool { return !t.Returned })
}

// JoinCustomerAttributes attaches region and segment to each transaction.
// An unresolved customer id is a data integrity failure, never a caller error.
func JoinCustomerAttributes(txns []models.Transaction, customers map[string]models.Customer) ([]models.EnrichedTransaction, error) {
	out := make([]models.EnrichedTransaction, len(txns))
	for i, t := range txns {
		c, ok := customers[t.CustomerID]
		if !ok {
			return nil, apperrors.Integrity("transaction %q references unknown customer %q", t.ID, t.CustomerID)
		}
		out[i] = models.EnrichedTransaction{Transaction: t, Region: c.Region, Segment: c.Segment}
	}
	return out, nil
}

func FilterByRegion(rows []models.EnrichedTransaction, region models.Region) []models.EnrichedTransaction {
	return filter(rows, func(r models.EnrichedTransaction) bool { return r.Region == region })
}

func FilterBySegment(rows []models.EnrichedTransaction, segment models.Segment) []models.EnrichedTransaction {
	return filter(rows, func(r models.EnrichedTransaction) bool { return r.Segment == segment })
}

func ParseCategory(s string) (models.Category, error) {
	return parseEnum("category", s, models.Categories)
}

func ParseRegion(s string) (models.Region, error) {
	return parseEnum("region", s, models.Regions)
}

func ParseSegment(s string) (models.Segment, error) {
	return parseEnum("segment", s, models.Segments)
}

// normalizeName is the form enumeration values and labels are compared in.
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = normalizeName(n)
	}
	return out
}

func parseEnum[T ~string](field, s string, allowed []T) (T, error) {
	v := T(normalizeName(s))
	for _, a := range allowed {
		if a == v {
			return v, nil
		}
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("invalid %s %q", field, s), models.Names(allowed)...)
}
