package movein

import (
	"github.com/shopspring/decimal"
)

// LineItem is one computed move-in charge.
type LineItem struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	IsFinal bool            `json:"isFinal"`
}

// Breakdown is the itemized move-in bill.
type Breakdown struct {
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

// CalculateBreakdown computes the move-in bill from templates.
//
// Rules:
// - Percentages are applied against the annual rent (not a running remainder)
//   for determinism.
// - Amounts are rounded to the configured scale; the total is the rounded sum.
// - When a quoted total is given (> 0), the breakdown must account for it
//   exactly: any rounding delta is applied to the final line, and a delta the
//   final line cannot absorb is an error.
func CalculateBreakdown(annualRent decimal.Decimal, quotedTotal decimal.Decimal, templates []LineTemplate, scale CurrencyScale) (Breakdown, error) {
	if err := ValidateTemplate(templates); err != nil {
		return Breakdown{}, err
	}
	if annualRent.LessThanOrEqual(decimal.Zero) {
		return Breakdown{}, ValidationError{Code: "ANNUAL_RENT_INVALID", Message: "annual rent must be > 0"}
	}

	if scale <= 0 {
		scale = DefaultCurrencyScale
	}

	items := make([]LineItem, 0, len(templates))
	sum := decimal.Zero
	for _, t := range templates {
		var amt decimal.Decimal
		switch t.Type {
		case LineTypeFixed:
			amt = t.Value
		case LineTypePercentage:
			// Value is a percentage like 10 for 10%.
			amt = annualRent.Mul(t.Value).Div(decimal.NewFromInt(100))
		default:
			return Breakdown{}, ValidationError{Code: "MOVEIN_TYPE_INVALID", Message: "line type must be fixed or percentage"}
		}
		amt = amt.Round(int32(scale))
		items = append(items, LineItem{Label: t.Label, Amount: amt, IsFinal: t.IsFinal})
		sum = sum.Add(amt)
	}

	if quotedTotal.GreaterThan(decimal.Zero) {
		delta := quotedTotal.Round(int32(scale)).Sub(sum)
		if !delta.IsZero() {
			last := len(items) - 1
			items[last].Amount = items[last].Amount.Add(delta).Round(int32(scale))
			sum = sum.Add(delta).Round(int32(scale))
		}
		if !sum.Equal(quotedTotal.Round(int32(scale))) {
			return Breakdown{}, ValidationError{Code: "MOVEIN_SUM_MISMATCH", Message: "line amounts do not sum to the quoted total"}
		}
	}

	// The delta must never zero out or invert the final line.
	if items[len(items)-1].Amount.LessThanOrEqual(decimal.Zero) {
		return Breakdown{}, ValidationError{Code: "FINAL_LINE_INVALID", Message: "final line amount must be > 0"}
	}

	return Breakdown{Items: items, Total: sum}, nil
}
