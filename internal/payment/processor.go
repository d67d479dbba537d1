package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/paystack"
)

var kobosPerNaira = decimal.NewFromInt(100)

// PaystackProcessor confirms a charge by verifying its reference against the
// Paystack API and settling the matching ledger row. It never moves money
// itself: the tenant pays on the hosted checkout page, and this only checks
// that the payment landed for at least the required amount.
type PaystackProcessor struct {
	Client   paystack.Client
	DB       *pgxpool.Pool
	Currency string
}

func (p PaystackProcessor) Charge(ctx context.Context, req booking.ChargeRequest) error {
	if req.Reference == "" {
		return fmt.Errorf("payment reference required for %s", req.Purpose)
	}

	tx, err := p.Client.VerifyTransaction(ctx, req.Reference)
	if err != nil {
		return err
	}
	if tx.Status != "success" {
		return fmt.Errorf("transaction %s not settled: status=%s", req.Reference, tx.Status)
	}
	if p.Currency != "" && tx.Currency != p.Currency {
		return fmt.Errorf("transaction %s paid in %s, expected %s", req.Reference, tx.Currency, p.Currency)
	}
	// Paystack amounts are in kobo.
	wantKobo := req.Amount.Mul(kobosPerNaira).IntPart()
	if tx.AmountKobo < wantKobo {
		return fmt.Errorf("transaction %s short: paid %d kobo, need %d", req.Reference, tx.AmountKobo, wantKobo)
	}

	paidAt := time.Now()
	if t, err := time.Parse(time.RFC3339, tx.PaidAt); err == nil {
		paidAt = t
	}
	return db.WithTx(ctx, p.DB, func(t pgx.Tx) error {
		return MarkCompletedByReference(ctx, t, req.Reference, paidAt)
	})
}
