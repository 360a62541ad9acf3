package models

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryGrocery     Category = "grocery"
	CategorySports      Category = "sports"
)

// Categories lists every category in enumeration order. The order is the
// tie-break order for rankings.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryHome,
	CategoryGrocery,
	CategorySports,
}

type Region string

const (
	RegionNorth Region = "north"
	RegionSouth Region = "south"
	RegionEast  Region = "east"
	RegionWest  Region = "west"
)

var Regions = []Region{RegionNorth, RegionSouth, RegionEast, RegionWest}

type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentRegular Segment = "regular"
	SegmentVIP     Segment = "vip"
)

var Segments = []Segment{SegmentNew, SegmentRegular, SegmentVIP}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentApplePay   PaymentMethod = "apple_pay"
)

var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentApplePay}

// Names converts an enumeration to its string values, preserving order.
func Names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
