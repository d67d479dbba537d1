package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

// Repository is the Postgres-backed Store. Booking rows carry a version
// column; timeline entries live in booking_timeline and are insert-only.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const bookingColumns = `
id, property_id, landlord_id, tenant_id, type, status,
application,
sign_off_fee_amount::text, sign_off_fee_paid,
payment_amount::text, payment_paid,
agreement_url, agreement_signed,
COALESCE(rejection_reason,''), COALESCE(cancellation_reason,''),
version, created_at, updated_at
`

func (r *Repository) Create(ctx context.Context, b Booking) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
INSERT INTO bookings (id, property_id, landlord_id, tenant_id, type, status,
                      application,
                      sign_off_fee_amount, sign_off_fee_paid,
                      payment_amount, payment_paid,
                      agreement_url, agreement_signed,
                      rejection_reason, cancellation_reason,
                      version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`
		args, err := bookingArgs(b)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, q, args...); err != nil {
			return err
		}
		for _, e := range b.Timeline {
			if err := insertTimeline(ctx, tx, b.ID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) Get(ctx context.Context, id string) (Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	tl, err := r.timeline(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	b.Timeline = tl
	return b, nil
}

// Update applies an optimistic write: the row is only touched when the stored
// version still equals expectedVersion, and the new timeline entry commits in
// the same transaction.
func (r *Repository) Update(ctx context.Context, b Booking, expectedVersion int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const q = `
UPDATE bookings
SET status = $2,
    application = $3,
    sign_off_fee_amount = $4, sign_off_fee_paid = $5,
    payment_amount = $6, payment_paid = $7,
    agreement_url = $8, agreement_signed = $9,
    rejection_reason = $10, cancellation_reason = $11,
    version = $12, updated_at = $13
WHERE id = $1 AND version = $14
`
		app, err := applicationJSON(b.Application)
		if err != nil {
			return err
		}
		feeAmt, feePaid := chargeCols(b.SignOffFee)
		payAmt, payPaid := chargeCols(b.Payment)
		agrURL, agrSigned := agreementCols(b.Agreement)

		tag, err := tx.Exec(ctx, q,
			b.ID, string(b.Status), app,
			feeAmt, feePaid, payAmt, payPaid,
			agrURL, agrSigned,
			nullIfEmpty(b.RejectionReason), nullIfEmpty(b.CancellationReason),
			b.Version, b.UpdatedAt, expectedVersion,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, b.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrVersionConflict
		}
		if len(b.Timeline) == 0 {
			return nil
		}
		return insertTimeline(ctx, tx, b.ID, b.Timeline[len(b.Timeline)-1])
	})
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
}

func (r *Repository) ListByLandlord(ctx context.Context, landlordID string) ([]Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE landlord_id = $1 ORDER BY created_at DESC`, landlordID)
}

func (r *Repository) ListAll(ctx context.Context) ([]Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	byID := map[string]int{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		byID[b.ID] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.ID)
	}
	const qt = `
SELECT booking_id, status, note, occurred_at
FROM booking_timeline
WHERE booking_id = ANY($1)
ORDER BY occurred_at ASC, id ASC
`
	trows, err := r.db.Query(ctx, qt, ids)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var bookingID, status string
		var note *string
		var at time.Time
		if err := trows.Scan(&bookingID, &status, &note, &at); err != nil {
			return nil, err
		}
		i, ok := byID[bookingID]
		if !ok {
			continue
		}
		e := TimelineEntry{Status: Status(status), OccurredAt: at}
		if note != nil {
			e.Note = *note
		}
		out[i].Timeline = append(out[i].Timeline, e)
	}
	return out, trows.Err()
}

func (r *Repository) timeline(ctx context.Context, bookingID string) ([]TimelineEntry, error) {
	const q = `
SELECT status, note, occurred_at
FROM booking_timeline
WHERE booking_id = $1
ORDER BY occurred_at ASC, id ASC
`
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineEntry
	for rows.Next() {
		var status string
		var note *string
		var at time.Time
		if err := rows.Scan(&status, &note, &at); err != nil {
			return nil, err
		}
		e := TimelineEntry{Status: Status(status), OccurredAt: at}
		if note != nil {
			e.Note = *note
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertTimeline(ctx context.Context, tx pgx.Tx, bookingID string, e TimelineEntry) error {
	const q = `
INSERT INTO booking_timeline (booking_id, status, note, occurred_at)
VALUES ($1, $2, $3, $4)
`
	_, err := tx.Exec(ctx, q, bookingID, string(e.Status), nullIfEmpty(e.Note), e.OccurredAt)
	return err
}

func bookingArgs(b Booking) ([]any, error) {
	app, err := applicationJSON(b.Application)
	if err != nil {
		return nil, err
	}
	feeAmt, feePaid := chargeCols(b.SignOffFee)
	payAmt, payPaid := chargeCols(b.Payment)
	agrURL, agrSigned := agreementCols(b.Agreement)
	return []any{
		b.ID, b.PropertyID, b.LandlordID, b.TenantID, string(b.Type), string(b.Status),
		app,
		feeAmt, feePaid, payAmt, payPaid,
		agrURL, agrSigned,
		nullIfEmpty(b.RejectionReason), nullIfEmpty(b.CancellationReason),
		b.Version, b.CreatedAt, b.UpdatedAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (Booking, error) {
	var (
		b                Booking
		typ, status      string
		appRaw           []byte
		feeAmt, payAmt   *string
		feePaid, payPaid bool
		agrURL           *string
		agrSigned        bool
	)
	if err := row.Scan(
		&b.ID, &b.PropertyID, &b.LandlordID, &b.TenantID, &typ, &status,
		&appRaw,
		&feeAmt, &feePaid,
		&payAmt, &payPaid,
		&agrURL, &agrSigned,
		&b.RejectionReason, &b.CancellationReason,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return Booking{}, err
	}
	b.Type = Type(typ)
	b.Status = Status(status)
	if len(appRaw) > 0 {
		var a Application
		if err := json.Unmarshal(appRaw, &a); err != nil {
			return Booking{}, err
		}
		b.Application = &a
	}
	if c, err := chargeFromCols(feeAmt, feePaid); err != nil {
		return Booking{}, err
	} else {
		b.SignOffFee = c
	}
	if c, err := chargeFromCols(payAmt, payPaid); err != nil {
		return Booking{}, err
	} else {
		b.Payment = c
	}
	if agrURL != nil {
		b.Agreement = &Agreement{DocumentURL: *agrURL, Signed: agrSigned}
	}
	return b, nil
}

func applicationJSON(a *Application) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func chargeCols(c *Charge) (*string, bool) {
	if c == nil {
		return nil, false
	}
	s := c.Amount.StringFixed(2)
	return &s, c.Paid
}

func agreementCols(a *Agreement) (*string, bool) {
	if a == nil {
		return nil, false
	}
	url := a.DocumentURL
	return &url, a.Signed
}

func chargeFromCols(amount *string, paid bool) (*Charge, error) {
	if amount == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*amount)
	if err != nil {
		return nil, err
	}
	return &Charge{Amount: d, Paid: paid}, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
