package movein

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateBreakdown_DefaultTemplate(t *testing.T) {
	rent := decimal.RequireFromString("1200000.00")

	got, err := CalculateBreakdown(rent, decimal.Zero, DefaultTemplate(rent), DefaultCurrencyScale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(got.Items))
	}
	// Rent + three 10% fees.
	want := decimal.RequireFromString("1560000.00")
	if !got.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got.Total)
	}
	if !got.Items[0].Amount.Equal(rent) {
		t.Fatalf("expected rent line %s, got %s", rent, got.Items[0].Amount)
	}
}

func TestCalculateBreakdown_RoundingDeltaAppliedToFinal(t *testing.T) {
	rent := decimal.RequireFromString("1000.00")
	templates := []LineTemplate{
		{Label: "Annual rent", Type: LineTypeFixed, Value: rent},
		{Label: "Agency fee", Type: LineTypePercentage, Value: decimal.RequireFromString("3.333")},
		{Label: "Legal fee", Type: LineTypePercentage, Value: decimal.RequireFromString("3.333"), IsFinal: true},
	}
	quoted := decimal.RequireFromString("1066.67")

	got, err := CalculateBreakdown(rent, quoted, templates, DefaultCurrencyScale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, it := range got.Items {
		sum = sum.Add(it.Amount)
	}
	if !sum.Equal(quoted) {
		t.Fatalf("expected sum %s, got %s", quoted, sum)
	}
	if !got.Items[2].IsFinal {
		t.Fatalf("expected last line final")
	}
}

func TestCalculateBreakdown_RejectsNonPositiveRent(t *testing.T) {
	if _, err := CalculateBreakdown(decimal.Zero, decimal.Zero, DefaultTemplate(decimal.NewFromInt(1)), DefaultCurrencyScale); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateTemplate_FinalMustBeLast(t *testing.T) {
	templates := []LineTemplate{
		{Label: "Deposit", Type: LineTypeFixed, Value: decimal.RequireFromString("10"), IsFinal: true},
		{Label: "Rent", Type: LineTypeFixed, Value: decimal.RequireFromString("90")},
	}
	if err := ValidateTemplate(templates); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateTemplate_ExactlyOneFinal(t *testing.T) {
	templates := []LineTemplate{
		{Label: "Rent", Type: LineTypeFixed, Value: decimal.RequireFromString("90"), IsFinal: true},
		{Label: "Deposit", Type: LineTypeFixed, Value: decimal.RequireFromString("10"), IsFinal: true},
	}
	if err := ValidateTemplate(templates); err == nil {
		t.Fatalf("expected error")
	}
}
