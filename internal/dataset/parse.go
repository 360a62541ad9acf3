package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

var (
	transactionColumns = []string{
		"transaction_id", "customer_id", "transaction_date", "category",
		"product_name", "amount", "quantity", "payment_method", "is_returned",
	}
	customerColumns = []string{"customer_id", "region", "signup_date", "customer_segment"}
)

var dateLayouts = []string{models.DateLayout, "2006-01-02 15:04:05", time.RFC3339}

// row is one CSV record with enough context to produce precise integrity errors.
type row struct {
	file   string
	line   int
	record []string
	index  map[string]int
}

func (r row) errorf(column, format string, args ...any) error {
	return apperrors.Integrity("%s line %d column %q: %s", r.file, r.line, column, fmt.Sprintf(format, args...))
}

func (r row) str(column string) (string, error) {
	v := strings.TrimSpace(r.record[r.index[column]])
	if v == "" {
		return "", r.errorf(column, "value is empty")
	}
	return v, nil
}

func (r row) date(column string) (time.Time, error) {
	v, err := r.str(column)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, r.errorf(column, "invalid date %q", v)
}

func (r row) amount(column string) (float64, error) {
	v, err := r.str(column)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.errorf(column, "invalid number %q", v)
	}
	if f < 0 {
		return 0, r.errorf(column, "amount %v is negative", f)
	}
	return f, nil
}

func (r row) quantity(column string) (int, error) {
	v, err := r.str(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, r.errorf(column, "invalid integer %q", v)
	}
	if n <= 0 {
		return 0, r.errorf(column, "quantity %d is not positive", n)
	}
	return n, nil
}

func (r row) boolean(column string) (bool, error) {
	v, err := r.str(column)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, r.errorf(column, "invalid boolean %q", v)
	}
	return b, nil
}

func enum[T ~string](r row, column string, allowed []T) (T, error) {
	v, err := r.str(column)
	if err != nil {
		return "", err
	}
	t := T(strings.ToLower(v))
	for _, a := range allowed {
		if a == t {
			return t, nil
		}
	}
	return "", r.errorf(column, "unknown value %q, expected one of %s", v, strings.Join(models.Names(allowed), ", "))
}

// readTable streams every data row of file to fn after checking that the
// header carries all required columns. Extra columns are ignored.
func readTable(ctx context.Context, fsys fs.FS, file string, required []string, fn func(row) error) error {
	f, err := fsys.Open(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.Integrity("%s: file not found", file)
		}
		return apperrors.IntegrityWrap(err, "%s: open failed", file)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return apperrors.Integrity("%s: file is empty", file)
	}
	if err != nil {
		return apperrors.IntegrityWrap(err, "%s: invalid header", file)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apperrors.Integrity("%s: missing required columns: %s", file, strings.Join(missing, ", "))
	}

	for n := 0; ; n++ {
		if n%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return apperrors.IntegrityWrap(err, "%s: malformed record", file)
		}

		line, _ := reader.FieldPos(0)
		if err := fn(row{file: file, line: line, record: record, index: index}); err != nil {
			return err
		}
	}
}

func parseTransaction(r row) (models.Transaction, error) {
	var (
		t   models.Transaction
		err error
	)
	if t.ID, err = r.str("transaction_id"); err != nil {
		return t, err
	}
	if t.CustomerID, err = r.str("customer_id"); err != nil {
		return t, err
	}
	if t.Date, err = r.date("transaction_date"); err != nil {
		return t, err
	}
	if t.Category, err = enum(r, "category", models.Categories); err != nil {
		return t, err
	}
	t.ProductName = strings.TrimSpace(r.record[r.index["product_name"]])
	if t.Amount, err = r.amount("amount"); err != nil {
		return t, err
	}
	if t.Quantity, err = r.quantity("quantity"); err != nil {
		return t, err
	}
	if t.PaymentMethod, err = enum(r, "payment_method", models.PaymentMethods); err != nil {
		return t, err
	}
	if t.Returned, err = r.boolean("is_returned"); err != nil {
		return t, err
	}
	return t, nil
}

func parseCustomer(r row) (models.Customer, error) {
	var (
		c   models.Customer
		err error
	)
	if c.ID, err = r.str("customer_id"); err != nil {
		return c, err
	}
	if c.Region, err = enum(r, "region", models.Regions); err != nil {
		return c, err
	}
	if c.SignupDate, err = r.date("signup_date"); err != nil {
		return c, err
	}
	if c.Segment, err = enum(r, "customer_segment", models.Segments); err != nil {
		return c, err
	}
	return c, nil
}
