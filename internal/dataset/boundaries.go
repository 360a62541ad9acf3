package dataset

import "time"

// Boundaries are the calendar anchors derived from the loaded data. Relative
// periods are always resolved against these, never against the wall clock.
type Boundaries struct {
	DataStart time.Time `json:"data_start"`
	DataEnd   time.Time `json:"data_end"`

	// The current month ends at DataEnd and may be partial.
	CurrentMonthStart  time.Time `json:"current_month_start"`
	CurrentMonthEnd    time.Time `json:"current_month_end"`
	PreviousMonthStart time.Time `json:"previous_month_start"`
	PreviousMonthEnd   time.Time `json:"previous_month_end"`

	CurrentQuarterStart  time.Time `json:"current_quarter_start"`
	PreviousQuarterStart time.Time `json:"previous_quarter_start"`
	PreviousQuarterEnd   time.Time `json:"previous_quarter_end"`
}

// NewBoundaries derives every anchor from the first and last transaction dates.
func NewBoundaries(start, end time.Time) Boundaries {
	b := Boundaries{DataStart: Day(start)}
	return b.AnchoredAt(end)
}

// AnchoredAt returns a copy whose current periods end at ref instead of DataEnd.
// DataStart is kept; DataEnd becomes ref.
func (b Boundaries) AnchoredAt(ref time.Time) Boundaries {
	ref = Day(ref)

	b.DataEnd = ref
	b.CurrentMonthStart = MonthStart(ref)
	b.CurrentMonthEnd = ref
	b.PreviousMonthEnd = b.CurrentMonthStart.AddDate(0, 0, -1)
	b.PreviousMonthStart = MonthStart(b.PreviousMonthEnd)

	b.CurrentQuarterStart = QuarterStart(ref)
	b.PreviousQuarterEnd = b.CurrentQuarterStart.AddDate(0, 0, -1)
	b.PreviousQuarterStart = QuarterStart(b.PreviousQuarterEnd)

	return b
}

// Contains reports whether day t lies within [DataStart, DataEnd].
func (b Boundaries) Contains(t time.Time) bool {
	t = Day(t)
	return !t.Before(b.DataStart) && !t.After(b.DataEnd)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func QuarterStart(t time.Time) time.Time {
	m := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), m, 1, 0, 0, 0, 0, time.UTC)
}
