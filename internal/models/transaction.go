package models

import "time"

type Transaction struct {
	ID            string
	CustomerID    string
	Date          time.Time
	Category      Category
	ProductName   string
	Amount        float64
	Quantity      int
	PaymentMethod PaymentMethod
	Returned      bool
}

type Customer struct {
	ID         string
	Region     Region
	SignupDate time.Time
	Segment    Segment
}

// EnrichedTransaction is a transaction with the owning customer's attributes attached.
type EnrichedTransaction struct {
	Transaction
	Region  Region
	Segment Segment
}

// DateLayout is the ISO date layout used for every date crossing the package boundary.
const DateLayout = "2006-01-02"
