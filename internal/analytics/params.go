package analytics

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "shop-insights/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	// oneofci is oneof after trimming and lowercasing the value.
	v.RegisterValidation("oneofci", func(fl validator.FieldLevel) bool {
		return slices.Contains(strings.Fields(fl.Param()), normalizeName(fl.Field().String()))
	})
	return v
}

// Parameter structs double as the JSON schema of each tool. Defaults are
// applied by the Default* constructors before decoding.

type RevenueParams struct {
	StartDate  string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,dive,oneofci=electronics clothing home grocery sports"`
}

type LTVParams struct {
	TopN            int    `json:"top_n" validate:"gte=1"`
	Region          string `json:"region,omitempty" validate:"omitempty,oneofci=north south east west"`
	Segment         string `json:"segment,omitempty" validate:"omitempty,oneofci=new regular vip"`
	MinTransactions int    `json:"min_transactions" validate:"gte=1"`
}

func DefaultLTVParams() LTVParams {
	return LTVParams{TopN: 10, MinTransactions: 1}
}

type ReturnRateParams struct {
	Category string `json:"category,omitempty" validate:"omitempty,oneofci=electronics clothing home grocery sports"`
}

const (
	PeriodCustom             = "custom"
	PeriodMonthOverMonth     = "month_over_month"
	PeriodQuarterOverQuarter = "quarter_over_quarter"
)

type PeriodParams struct {
	PeriodLabel   string `json:"period_label,omitempty" validate:"omitempty,oneofci=custom month_over_month mom quarter_over_quarter qoq"`
	ReferenceDate string `json:"reference_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CurrentStart  string `json:"current_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CurrentEnd    string `json:"current_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PreviousStart string `json:"previous_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PreviousEnd   string `json:"previous_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func DefaultPeriodParams() PeriodParams {
	return PeriodParams{PeriodLabel: PeriodCustom}
}

type PaymentParams struct {
	Category string `json:"category,omitempty" validate:"omitempty,oneofci=electronics clothing home grocery sports"`
	Region   string `json:"region,omitempty" validate:"omitempty,oneofci=north south east west"`
}

type SegmentParams struct {
	Region string `json:"region,omitempty" validate:"omitempty,oneofci=north south east west"`
}

type TrendParams struct {
	Category string `json:"category,omitempty" validate:"omitempty,oneofci=electronics clothing home grocery sports"`
}

// validateParams runs the struct tags and converts the first failure into an
// invalid_input error whose suggestions tell the caller what would work.
func validateParams(p any) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperrors.Wrap(err, apperrors.CodeComputation, "parameter validation failed")
	}

	fe := errs[0]
	switch fe.Tag() {
	case "oneofci":
		return apperrors.InvalidInput(fmt.Sprintf("invalid %s %q", fe.Field(), fe.Value()), strings.Fields(fe.Param())...)
	case "datetime":
		return apperrors.InvalidInput(
			fmt.Sprintf("invalid %s %q, expected YYYY-MM-DD", fe.Field(), fe.Value()),
			"use a date like 2024-01-31",
		)
	case "gte":
		return apperrors.InvalidInput(
			fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value()),
			fmt.Sprintf("use %s or more", fe.Param()),
		)
	}
	return apperrors.InvalidInput(fmt.Sprintf("invalid %s", fe.Field()))
}
