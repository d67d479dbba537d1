package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("payment: not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const recordColumns = `
id, COALESCE(booking_id::text,''), reference, purpose,
amount::text, fee::text, currency, status, payer, recipient, method,
COALESCE(checkout_url,''), created_at, updated_at
`

func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Query(ctx, `SELECT `+recordColumns+` FROM payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindPending returns the open ledger row for a booking+purpose pair, if any,
// so a repeated payment request reuses the existing checkout session.
func (r *Repository) FindPending(ctx context.Context, bookingID, purpose string) (*Record, error) {
	const q = `
SELECT ` + recordColumns + `
FROM payments
WHERE booking_id = $1 AND purpose = $2 AND status = 'pending'
ORDER BY created_at DESC
LIMIT 1
`
	rec, err := scanRecord(r.db.QueryRow(ctx, q, bookingID, purpose))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Insert(ctx context.Context, rec Record) (*Record, error) {
	const q = `
INSERT INTO payments (booking_id, reference, purpose, amount, fee, currency, status, payer, recipient, method, checkout_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + recordColumns + `
`
	out, err := scanRecord(r.db.QueryRow(ctx, q,
		nullIfEmpty(rec.BookingID), rec.Reference, rec.Purpose,
		rec.Amount.StringFixed(2), rec.Fee.StringFixed(2), rec.Currency,
		string(rec.Status), rec.Payer, rec.Recipient, rec.Method,
		nullIfEmpty(rec.CheckoutURL),
	))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate row-locks a ledger record inside tx for an admin transition.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	rec, err := scanRecord(tx.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func UpdateStatus(ctx context.Context, tx pgx.Tx, id string, next Status) error {
	const q = `
UPDATE payments
SET status = $2, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(next))
	return err
}

// MarkCompletedByReference settles the pending row matching a confirmed
// processor reference. Safe to replay: a row already past pending is left
// alone.
func MarkCompletedByReference(ctx context.Context, tx pgx.Tx, reference string, paidAt time.Time) error {
	const q = `
UPDATE payments
SET status = 'completed', updated_at = $2
WHERE reference = $1 AND status = 'pending'
`
	_, err := tx.Exec(ctx, q, reference, paidAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec         Record
		amount, fee string
		status      string
	)
	if err := row.Scan(
		&rec.ID, &rec.BookingID, &rec.Reference, &rec.Purpose,
		&amount, &fee, &rec.Currency, &status, &rec.Payer, &rec.Recipient, &rec.Method,
		&rec.CheckoutURL, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	var err error
	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return Record{}, err
	}
	if rec.Fee, err = decimal.NewFromString(fee); err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
