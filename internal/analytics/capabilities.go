package analytics

import "shop-insights/internal/models"

// Tool names shared by the engine catalog and every surface that calls it.
const (
	ToolRevenueByCategory = "get_revenue_by_category"
	ToolCustomerLTV       = "get_customer_ltv"
	ToolReturnRates       = "get_return_rates"
	ToolCompareRegions    = "compare_regions"
	ToolComparePeriods    = "compare_time_periods"
	ToolDataOverview      = "get_data_overview"
	ToolPaymentMethods    = "get_payment_method_analysis"
	ToolSegments          = "get_segment_comparison"
	ToolRevenueTrends     = "get_revenue_trends"
	ToolCapabilities      = "explain_capabilities"
)

type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

type Capability struct {
	ToolName         string      `json:"tool_name"`
	Description      string      `json:"description"`
	Parameters       []Parameter `json:"parameters"`
	ExampleQuestions []string    `json:"example_questions"`
}

type CapabilityReport struct {
	Scoped
	Data       []Capability `json:"data"`
	TotalTools int          `json:"total_tools"`
}

var (
	categoryNames = models.Names(models.Categories)
	regionNames   = models.Names(models.Regions)
	segmentNames  = models.Names(models.Segments)
	periodLabels  = []string{PeriodCustom, PeriodMonthOverMonth, "mom", PeriodQuarterOverQuarter, "qoq"}
)

var catalog = []Capability{
	{
		ToolName:    ToolRevenueByCategory,
		Description: "Total revenue per product category, returns excluded, optionally within a date range.",
		Parameters: []Parameter{
			{Name: "start_date", Type: "date", Description: "First day to include (YYYY-MM-DD). Defaults to the first data day."},
			{Name: "end_date", Type: "date", Description: "Last day to include (YYYY-MM-DD). Defaults to the last data day."},
			{Name: "categories", Type: "[]string", Description: "Only include these categories.", Enum: categoryNames},
		},
		ExampleQuestions: []string{
			"What is our total revenue by category?",
			"How much revenue did electronics generate?",
			"Show me revenue breakdown for Q4",
		},
	},
	{
		ToolName:    ToolCustomerLTV,
		Description: "Top customers ranked by lifetime value (non-returned spend).",
		Parameters: []Parameter{
			{Name: "top_n", Type: "int", Description: "Number of customers to return.", Default: 10},
			{Name: "region", Type: "string", Description: "Only customers in this region.", Enum: regionNames},
			{Name: "segment", Type: "string", Description: "Only customers in this segment.", Enum: segmentNames},
			{Name: "min_transactions", Type: "int", Description: "Ignore customers with fewer purchases.", Default: 1},
		},
		ExampleQuestions: []string{
			"Which customers have the highest lifetime value?",
			"Who are our top 5 VIP customers?",
			"Show me the best customers in the north region",
		},
	},
	{
		ToolName:    ToolReturnRates,
		Description: "Return rate and revenue lost to returns per product category.",
		Parameters: []Parameter{
			{Name: "category", Type: "string", Description: "Only this category.", Enum: categoryNames},
		},
		ExampleQuestions: []string{
			"What's the return rate by product category?",
			"Which category has the most returns?",
			"How much revenue are we losing to returns?",
		},
	},
	{
		ToolName:    ToolCompareRegions,
		Description: "Revenue, customers, order value and return rate per region.",
		Parameters:  []Parameter{},
		ExampleQuestions: []string{
			"Compare performance across regions",
			"Which region generates the most revenue?",
			"Which region has the most customers?",
		},
	},
	{
		ToolName:    ToolComparePeriods,
		Description: "Compare revenue, transactions and customers between two periods: month over month, quarter over quarter, or explicit date ranges.",
		Parameters: []Parameter{
			{Name: "period_label", Type: "string", Description: "Calendar comparison to run.", Default: PeriodCustom, Enum: periodLabels},
			{Name: "reference_date", Type: "date", Description: "Day the current period ends on. Defaults to the last data day."},
			{Name: "current_start", Type: "date", Description: "Explicit current period start."},
			{Name: "current_end", Type: "date", Description: "Explicit current period end."},
			{Name: "previous_start", Type: "date", Description: "Explicit previous period start."},
			{Name: "previous_end", Type: "date", Description: "Explicit previous period end."},
		},
		ExampleQuestions: []string{
			"How is this month performing compared to last month?",
			"Are we growing quarter over quarter?",
			"Compare January with February",
		},
	},
	{
		ToolName:    ToolDataOverview,
		Description: "Date range, record counts and the values each filter accepts.",
		Parameters:  []Parameter{},
		ExampleQuestions: []string{
			"What is the date range of the data?",
			"How many transactions are there?",
			"What categories are available?",
		},
	},
	{
		ToolName:    ToolPaymentMethods,
		Description: "Revenue, usage share, order value and return rate per payment method.",
		Parameters: []Parameter{
			{Name: "category", Type: "string", Description: "Only this category.", Enum: categoryNames},
			{Name: "region", Type: "string", Description: "Only customers in this region.", Enum: regionNames},
		},
		ExampleQuestions: []string{
			"What payment methods do customers prefer?",
			"Which payment method has the highest average order value?",
			"What's the return rate by payment method?",
		},
	},
	{
		ToolName:    ToolSegments,
		Description: "Compare the new, regular and vip customer segments.",
		Parameters: []Parameter{
			{Name: "region", Type: "string", Description: "Only customers in this region.", Enum: regionNames},
		},
		ExampleQuestions: []string{
			"How do VIP customers compare to regular customers?",
			"Which customer segment spends the most?",
			"What's the return rate by customer segment?",
		},
	},
	{
		ToolName:    ToolRevenueTrends,
		Description: "Monthly revenue over the whole dataset with best and worst month and the overall trend.",
		Parameters: []Parameter{
			{Name: "category", Type: "string", Description: "Only this category.", Enum: categoryNames},
		},
		ExampleQuestions: []string{
			"What's our revenue trend over time?",
			"Which month had the highest sales?",
			"Are we growing or declining overall?",
		},
	},
	{
		ToolName:    ToolCapabilities,
		Description: "List every analysis available and the questions it answers.",
		Parameters:  []Parameter{},
		ExampleQuestions: []string{
			"What can you help me with?",
			"What analyses are available?",
		},
	},
}

// Catalog returns a copy of the tool catalog.
func Catalog() []Capability {
	out := make([]Capability, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Capability, bool) {
	for _, c := range catalog {
		if c.ToolName == name {
			return c, true
		}
	}
	return Capability{}, false
}

// Capabilities never fails.
func (e *Engine) Capabilities() *CapabilityReport {
	return &CapabilityReport{
		Scoped:     scoped(e.fullRange(), nil, len(catalog)),
		Data:       Catalog(),
		TotalTools: len(catalog),
	}
}
