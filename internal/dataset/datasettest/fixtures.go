// Package datasettest builds deterministic tables for tests and benchmarks.
package datasettest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"shop-insights/internal/dataset"
	"shop-insights/internal/models"
)

// Fixture is a pair of tables ready to be written or validated.
type Fixture struct {
	Transactions []models.Transaction
	Customers    []models.Customer
}

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func txn(id, customer, day string, cat models.Category, amount float64, qty int, pm models.PaymentMethod, returned bool) models.Transaction {
	return models.Transaction{
		ID:            id,
		CustomerID:    customer,
		Date:          date(day),
		Category:      cat,
		ProductName:   fmt.Sprintf("%s item", cat),
		Amount:        amount,
		Quantity:      qty,
		PaymentMethod: pm,
		Returned:      returned,
	}
}

// Small is a nine-row dataset spanning 2024-01-05..2024-03-15 whose
// aggregates are easy to check by hand:
//
//	revenue (returns excluded): electronics 450, home 120, sports 120, clothing 50, grocery 25
//	returns: T3 electronics 200, T8 clothing 60
//	regions: north 350, west 150, east 145, south 120
func Small() Fixture {
	return Fixture{
		Customers: []models.Customer{
			{ID: "C1", Region: models.RegionNorth, SignupDate: date("2023-06-01"), Segment: models.SegmentRegular},
			{ID: "C2", Region: models.RegionSouth, SignupDate: date("2023-02-11"), Segment: models.SegmentVIP},
			{ID: "C3", Region: models.RegionEast, SignupDate: date("2023-11-20"), Segment: models.SegmentNew},
			{ID: "C4", Region: models.RegionWest, SignupDate: date("2023-08-15"), Segment: models.SegmentRegular},
		},
		Transactions: []models.Transaction{
			txn("T1", "C1", "2024-01-05", models.CategoryElectronics, 300, 2, models.PaymentCreditCard, false),
			txn("T2", "C1", "2024-01-20", models.CategoryClothing, 50, 1, models.PaymentPayPal, false),
			txn("T3", "C2", "2024-02-03", models.CategoryElectronics, 200, 1, models.PaymentCreditCard, true),
			txn("T4", "C2", "2024-02-10", models.CategoryHome, 80, 2, models.PaymentDebitCard, false),
			txn("T5", "C3", "2024-02-14", models.CategoryGrocery, 25, 1, models.PaymentApplePay, false),
			txn("T6", "C3", "2024-02-28", models.CategorySports, 120, 2, models.PaymentPayPal, false),
			txn("T7", "C4", "2024-03-01", models.CategoryElectronics, 150, 1, models.PaymentCreditCard, false),
			txn("T8", "C1", "2024-03-10", models.CategoryClothing, 60, 1, models.PaymentDebitCard, true),
			txn("T9", "C2", "2024-03-15", models.CategoryHome, 40, 1, models.PaymentPayPal, false),
		},
	}
}

var basePrices = map[models.Category]float64{
	models.CategoryElectronics: 150,
	models.CategoryClothing:    50,
	models.CategoryHome:        40,
	models.CategoryGrocery:     25,
	models.CategorySports:      60,
}

// Generate produces a seeded dataset covering the 365 days before end, with
// more transactions in recent months and roughly 8% returns.
func Generate(seed uint64, customers, transactions int, end time.Time) Fixture {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	end = dataset.Day(end)

	f := Fixture{
		Customers:    make([]models.Customer, customers),
		Transactions: make([]models.Transaction, transactions),
	}

	segments := []models.Segment{models.SegmentNew, models.SegmentNew, models.SegmentNew,
		models.SegmentRegular, models.SegmentRegular, models.SegmentRegular, models.SegmentRegular, models.SegmentRegular,
		models.SegmentVIP, models.SegmentVIP}

	for i := range f.Customers {
		f.Customers[i] = models.Customer{
			ID:         fmt.Sprintf("CUST-%04d", i),
			Region:     models.Regions[rng.IntN(len(models.Regions))],
			SignupDate: end.AddDate(0, 0, -(180 + rng.IntN(551))),
			Segment:    segments[rng.IntN(len(segments))],
		}
	}

	for i := range f.Transactions {
		cat := models.Categories[rng.IntN(len(models.Categories))]
		qty := 1 + rng.IntN(3)
		unit := round2(basePrices[cat] * (0.5 + 1.5*rng.Float64()))
		// Triangular distribution over [0, 365] with mode 60 days ago.
		daysAgo := int(triangular(rng, 0, 365, 60))

		f.Transactions[i] = models.Transaction{
			ID:            fmt.Sprintf("TXN-%06d", i),
			CustomerID:    f.Customers[rng.IntN(customers)].ID,
			Date:          end.AddDate(0, 0, -daysAgo),
			Category:      cat,
			ProductName:   fmt.Sprintf("%s Item %d", cat, 1+rng.IntN(20)),
			Amount:        round2(unit * float64(qty)),
			Quantity:      qty,
			PaymentMethod: models.PaymentMethods[rng.IntN(len(models.PaymentMethods))],
			Returned:      rng.Float64() < 0.08,
		}
	}
	// The newest row always lands on end so boundaries are predictable.
	if transactions > 0 {
		f.Transactions[0].Date = end
	}
	return f
}

func triangular(rng *rand.Rand, low, high, mode float64) float64 {
	u := rng.Float64()
	c := (mode - low) / (high - low)
	if u > c {
		return high + (low-high)*math.Sqrt((1-u)*(1-c))
	}
	return low + (high-low)*math.Sqrt(u*c)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TransactionsCSV renders the transactions table the way the data generator writes it.
func (f Fixture) TransactionsCSV() []byte {
	rows := [][]string{{"transaction_id", "customer_id", "transaction_date", "category",
		"product_name", "amount", "quantity", "payment_method", "is_returned"}}
	for _, t := range f.Transactions {
		returned := "False"
		if t.Returned {
			returned = "True"
		}
		rows = append(rows, []string{
			t.ID, t.CustomerID, t.Date.Format(models.DateLayout), string(t.Category),
			t.ProductName, strconv.FormatFloat(t.Amount, 'f', -1, 64), strconv.Itoa(t.Quantity),
			string(t.PaymentMethod), returned,
		})
	}
	return encode(rows)
}

func (f Fixture) CustomersCSV() []byte {
	rows := [][]string{{"customer_id", "region", "signup_date", "customer_segment"}}
	for _, c := range f.Customers {
		rows = append(rows, []string{c.ID, string(c.Region), c.SignupDate.Format(models.DateLayout), string(c.Segment)})
	}
	return encode(rows)
}

func encode(rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.WriteAll(rows)
	return buf.Bytes()
}

// FS serves the fixture as an in-memory file system with the default file names.
func (f Fixture) FS() fstest.MapFS {
	return fstest.MapFS{
		dataset.DefaultTransactionsFile: {Data: f.TransactionsCSV()},
		dataset.DefaultCustomersFile:    {Data: f.CustomersCSV()},
	}
}

// Source wraps FS in a dataset.Source.
func (f Fixture) Source() dataset.Source {
	return dataset.Source{
		FS:               f.FS(),
		Name:             "fixture",
		TransactionsFile: dataset.DefaultTransactionsFile,
		CustomersFile:    dataset.DefaultCustomersFile,
	}
}

// WriteDir writes both CSV files into a fresh temporary directory.
func WriteDir(tb testing.TB, f Fixture) string {
	tb.Helper()
	dir := tb.TempDir()
	for name, file := range f.FS() {
		if err := os.WriteFile(filepath.Join(dir, name), file.Data, 0o600); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// Dataset validates the fixture in memory.
func Dataset(tb testing.TB, f Fixture) *dataset.Dataset {
	tb.Helper()
	ds, err := dataset.New(f.Transactions, f.Customers)
	if err != nil {
		tb.Fatalf("build dataset: %v", err)
	}
	return ds
}
