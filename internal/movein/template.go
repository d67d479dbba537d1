package movein

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type LineType string

const (
	LineTypeFixed      LineType = "fixed"
	LineTypePercentage LineType = "percentage"
)

// LineTemplate describes one move-in charge: either a fixed amount or a
// percentage of the annual rent.
type LineTemplate struct {
	Label   string          `json:"label"`
	Type    LineType        `json:"type"`
	Value   decimal.Decimal `json:"value"`
	IsFinal bool            `json:"isFinal"`
}

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DefaultTemplate is the customary Lagos move-in split: a year's rent up
// front plus caution deposit, agency and legal fees as a share of the rent.
func DefaultTemplate(annualRent decimal.Decimal) []LineTemplate {
	return []LineTemplate{
		{Label: "Annual rent", Type: LineTypeFixed, Value: annualRent},
		{Label: "Caution deposit", Type: LineTypePercentage, Value: decimal.NewFromInt(10)},
		{Label: "Agency fee", Type: LineTypePercentage, Value: decimal.NewFromInt(10)},
		{Label: "Legal fee", Type: LineTypePercentage, Value: decimal.NewFromInt(10), IsFinal: true},
	}
}

// ValidateTemplate enforces the breakdown contract:
// - Exactly one final line, and it must be last.
// - All values must be > 0.
func ValidateTemplate(templates []LineTemplate) error {
	if len(templates) == 0 {
		return ValidationError{Code: "MOVEIN_TEMPLATE_EMPTY", Message: "move-in template cannot be empty"}
	}

	finalIdx := -1
	for i, t := range templates {
		if t.Value.LessThanOrEqual(decimal.Zero) {
			return ValidationError{Code: "MOVEIN_VALUE_INVALID", Message: "line value must be > 0"}
		}
		if t.Label == "" {
			return ValidationError{Code: "MOVEIN_LABEL_REQUIRED", Message: "line label is required"}
		}
		switch t.Type {
		case LineTypeFixed, LineTypePercentage:
		default:
			return ValidationError{Code: "MOVEIN_TYPE_INVALID", Message: "line type must be fixed or percentage"}
		}
		if t.IsFinal {
			if finalIdx != -1 {
				return ValidationError{Code: "FINAL_LINE_DUPLICATE", Message: "exactly one final line is required"}
			}
			finalIdx = i
		}
	}

	if finalIdx == -1 {
		return ValidationError{Code: "FINAL_LINE_MISSING", Message: "final line is required"}
	}
	if finalIdx != len(templates)-1 {
		return ValidationError{Code: "FINAL_LINE_NOT_LAST", Message: "final line must be last"}
	}

	return nil
}
