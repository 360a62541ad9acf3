package tools

import (
	"shop-insights/internal/analytics"
	"shop-insights/internal/dataset"
	apperrors "shop-insights/internal/errors"
	"shop-insights/internal/models"
)

// Reply is either an *Envelope or an *ErrorEnvelope.
type Reply interface {
	Succeeded() bool
}

type Metadata struct {
	DateRangeStart string         `json:"date_range_start"`
	DateRangeEnd   string         `json:"date_range_end"`
	FiltersApplied map[string]any `json:"filters_applied"`
	RecordCount    int            `json:"record_count"`
	DataAsOf       string         `json:"data_as_of"`
}

type Envelope struct {
	ToolUsed string   `json:"tool_used"`
	Summary  string   `json:"summary"`
	Data     any      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

func (*Envelope) Succeeded() bool { return true }

type ErrorEnvelope struct {
	OK          bool     `json:"ok"`
	ErrorType   string   `json:"error_type"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

func (*ErrorEnvelope) Succeeded() bool { return false }

func newEnvelope(tool, summary string, data any, scope analytics.Scope, b dataset.Boundaries) *Envelope {
	return &Envelope{
		ToolUsed: tool,
		Summary:  summary,
		Data:     data,
		Metadata: Metadata{
			DateRangeStart: scope.DateRange.Start.Format(models.DateLayout),
			DateRangeEnd:   scope.DateRange.End.Format(models.DateLayout),
			FiltersApplied: scope.Filters,
			RecordCount:    scope.RecordCount,
			DataAsOf:       b.DataEnd.Format(models.DateLayout),
		},
	}
}

// errorEnvelope converts a query-tier error. Suggestions are never empty.
func errorEnvelope(err *apperrors.AppError) *ErrorEnvelope {
	suggestions := err.Suggestions
	if len(suggestions) == 0 {
		suggestions = []string{"call explain_capabilities to see what is available"}
	}
	return &ErrorEnvelope{
		OK:          false,
		ErrorType:   string(err.Code),
		Message:     err.Message,
		Suggestions: suggestions,
	}
}

// FatalEnvelope renders a system failure for transports that must answer
// with an envelope anyway.
func FatalEnvelope(err error) *ErrorEnvelope {
	msg := "the analysis could not be completed"
	if appErr := apperrors.As(err); appErr != nil {
		msg = appErr.Message
	}
	return &ErrorEnvelope{
		OK:          false,
		ErrorType:   string(apperrors.CodeComputation),
		Message:     msg,
		Suggestions: []string{"check the server logs", "retry once the dataset has been fixed"},
	}
}
