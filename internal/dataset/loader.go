package dataset

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"shop-insights/internal/config"
	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
	"shop-insights/internal/observability"
)

const (
	DefaultTransactionsFile = "transactions.csv"
	DefaultCustomersFile    = "customers.csv"
)

// Source locates the two tables inside a file system.
type Source struct {
	FS               fs.FS
	Name             string
	TransactionsFile string
	CustomersFile    string
}

// DirSource reads the default file names from a directory on disk.
func DirSource(dir string) Source {
	return Source{
		FS:               os.DirFS(dir),
		Name:             dir,
		TransactionsFile: DefaultTransactionsFile,
		CustomersFile:    DefaultCustomersFile,
	}
}

// ConfigSource reads the configured file names from the configured directory.
func ConfigSource(cfg config.DataConfig) Source {
	src := DirSource(cfg.Dir)
	src.TransactionsFile = cfg.TransactionsFile
	src.CustomersFile = cfg.CustomersFile
	return src
}

// Stats describes the last completed load.
type Stats struct {
	Source       string        `json:"source"`
	Transactions int           `json:"transactions"`
	Customers    int           `json:"customers"`
	Duration     time.Duration `json:"duration"`
	LoadedAt     time.Time     `json:"loaded_at"`
}

// Dataset is an immutable, validated snapshot of both tables.
type Dataset struct {
	transactions  []models.Transaction
	customers     []models.Customer
	customersByID map[string]models.Customer
	boundaries    Boundaries
	stats         Stats
}

// New validates the tables and derives boundaries. It is what the loader runs
// after parsing and is exported for callers that build tables in memory.
func New(transactions []models.Transaction, customers []models.Customer) (*Dataset, error) {
	if len(transactions) == 0 {
		return nil, apperrors.Integrity("transactions table is empty")
	}

	byID := make(map[string]models.Customer, len(customers))
	for _, c := range customers {
		if _, dup := byID[c.ID]; dup {
			return nil, apperrors.Integrity("duplicate customer id %q", c.ID)
		}
		byID[c.ID] = c
	}

	seen := make(map[string]struct{}, len(transactions))
	start, end := transactions[0].Date, transactions[0].Date
	for _, t := range transactions {
		if _, dup := seen[t.ID]; dup {
			return nil, apperrors.Integrity("duplicate transaction id %q", t.ID)
		}
		seen[t.ID] = struct{}{}

		if _, ok := byID[t.CustomerID]; !ok {
			return nil, apperrors.Integrity("transaction %q references unknown customer %q", t.ID, t.CustomerID)
		}
		if t.Date.Before(start) {
			start = t.Date
		}
		if t.Date.After(end) {
			end = t.Date
		}
	}

	return &Dataset{
		transactions:  transactions,
		customers:     customers,
		customersByID: byID,
		boundaries:    NewBoundaries(start, end),
		stats: Stats{
			Transactions: len(transactions),
			Customers:    len(customers),
		},
	}, nil
}

// Transactions returns a copy of the transactions table in file order.
func (d *Dataset) Transactions() []models.Transaction { return slices.Clone(d.transactions) }

// Customers returns a copy of the customers table in file order.
func (d *Dataset) Customers() []models.Customer { return slices.Clone(d.customers) }

// CustomersByID returns a copy of the customer index.
func (d *Dataset) CustomersByID() map[string]models.Customer { return maps.Clone(d.customersByID) }

// Customer looks up one customer without copying the index.
func (d *Dataset) Customer(id string) (models.Customer, bool) {
	c, ok := d.customersByID[id]
	return c, ok
}

func (d *Dataset) Boundaries() Boundaries { return d.boundaries }
func (d *Dataset) TransactionCount() int { return len(d.transactions) }
func (d *Dataset) CustomerCount() int { return len(d.customers) }
func (d *Dataset) LoadedAt() time.Time { return d.stats.LoadedAt }
func (d *Dataset) Stats() Stats { return d.stats }

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// Loader reads the source at most once and hands every caller the same
// *Dataset until Reset.
type Loader struct {
	src     Source
	logger  *slog.Logger
	metrics *observability.Metrics

	group singleflight.Group
	mu    sync.RWMutex
	ds    *Dataset
	gen   uint64
	reads atomic.Int64
}

func NewLoader(src Source, opts ...Option) *Loader {
	if src.TransactionsFile == "" {
		src.TransactionsFile = DefaultTransactionsFile
	}
	if src.CustomersFile == "" {
		src.CustomersFile = DefaultCustomersFile
	}
	l := &Loader{src: src, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the cached dataset, reading the source on first use.
// Concurrent first callers share a single read. The shared read ignores
// cancellation of whichever caller started it; each caller still stops
// waiting when its own ctx is done.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if ds := l.cached(); ds != nil {
		return ds, nil
	}

	readCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan("load", func() (any, error) {
		l.mu.RLock()
		ds, gen := l.ds, l.gen
		l.mu.RUnlock()
		if ds != nil {
			return ds, nil
		}

		ds, err := l.read(readCtx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen == gen {
			l.ds = ds
		}
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

func (l *Loader) Boundaries(ctx context.Context) (Boundaries, error) {
	ds, err := l.Load(ctx)
	if err != nil {
		return Boundaries{}, err
	}
	return ds.Boundaries(), nil
}

func (l *Loader) Transactions(ctx context.Context) ([]models.Transaction, error) {
	ds, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Transactions(), nil
}

func (l *Loader) Customers(ctx context.Context) ([]models.Customer, error) {
	ds, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Customers(), nil
}

// Reset drops the cached dataset so the next Load rereads the source. A load
// already in flight still answers its callers but is not cached.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.ds = nil
	l.gen++
	l.mu.Unlock()
	l.group.Forget("load")
}

func (l *Loader) cached() *Dataset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ds
}

func (l *Loader) read(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	l.reads.Add(1)
	l.logger.Info("loading dataset",
		"source", l.src.Name,
		"transactions_file", l.src.TransactionsFile,
		"customers_file", l.src.CustomersFile,
	)

	var (
		transactions []models.Transaction
		customers    []models.Customer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readTable(gctx, l.src.FS, l.src.TransactionsFile, transactionColumns, func(r row) error {
			t, err := parseTransaction(r)
			if err != nil {
				return err
			}
			transactions = append(transactions, t)
			return nil
		})
	})
	g.Go(func() error {
		return readTable(gctx, l.src.FS, l.src.CustomersFile, customerColumns, func(r row) error {
			c, err := parseCustomer(r)
			if err != nil {
				return err
			}
			customers = append(customers, c)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		l.logger.Error("dataset load failed", "source", l.src.Name, "error", err)
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	ds, err := New(transactions, customers)
	if err != nil {
		l.logger.Error("dataset validation failed", "source", l.src.Name, "error", err)
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	duration := time.Since(start)
	ds.stats.Source = l.src.Name
	ds.stats.Duration = duration
	ds.stats.LoadedAt = time.Now().UTC()

	l.metrics.ObserveLoad(ds.TransactionCount(), ds.CustomerCount(), duration)
	l.logger.Info("dataset loaded",
		"transactions", ds.TransactionCount(),
		"customers", ds.CustomerCount(),
		"data_start", ds.boundaries.DataStart.Format(models.DateLayout),
		"data_end", ds.boundaries.DataEnd.Format(models.DateLayout),
		"duration", duration,
	)

	return ds, nil
}
