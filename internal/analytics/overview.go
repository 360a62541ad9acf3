package analytics

import "shop-insights/internal/models"

type DataOverview struct {
	Scoped
	DataStart        string   `json:"data_start"`
	DataEnd          string   `json:"data_end"`
	TransactionCount int      `json:"transaction_count"`
	CustomerCount    int      `json:"customer_count"`
	ReturnedCount    int      `json:"returned_count"`
	Categories       []string `json:"categories"`
	Regions          []string `json:"regions"`
	Segments         []string `json:"segments"`
	PaymentMethods   []string `json:"payment_methods"`
}

// DataOverview describes the loaded dataset and the values every filter accepts.
func (e *Engine) DataOverview() *DataOverview {
	returned := 0
	for _, t := range e.transactions {
		if t.Returned {
			returned++
		}
	}

	return &DataOverview{
		Scoped:           scoped(e.fullRange(), nil, len(e.transactions)),
		DataStart:        e.boundaries.DataStart.Format(models.DateLayout),
		DataEnd:          e.boundaries.DataEnd.Format(models.DateLayout),
		TransactionCount: len(e.transactions),
		CustomerCount:    len(e.customers),
		ReturnedCount:    returned,
		Categories:       models.Names(models.Categories),
		Regions:          models.Names(models.Regions),
		Segments:         models.Names(models.Segments),
		PaymentMethods:   models.Names(models.PaymentMethods),
	}
}
