package dispute

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("dispute: not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const disputeColumns = `
id, complainant_id, respondent_id, COALESCE(booking_id::text,''), COALESCE(property_id::text,''),
subject, description, status, COALESCE(thread_id::text,''), COALESCE(outcome,''),
COALESCE(resolution,''), documents, created_at, updated_at
`

func (r *Repository) Insert(ctx context.Context, d Dispute) (Dispute, error) {
	const q = `
INSERT INTO disputes (complainant_id, respondent_id, booking_id, property_id, subject, description, status, documents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + disputeColumns + `
`
	return scanDispute(r.db.QueryRow(ctx, q,
		d.ComplainantID, d.RespondentID,
		nullIfEmpty(d.BookingID), nullIfEmpty(d.PropertyID),
		d.Subject, d.Description, string(StatusOpen), d.Documents,
	))
}

func (r *Repository) List(ctx context.Context) ([]Dispute, error) {
	return r.list(ctx, `SELECT `+disputeColumns+` FROM disputes ORDER BY created_at DESC`)
}

func (r *Repository) ListByParty(ctx context.Context, userID string) ([]Dispute, error) {
	const q = `
SELECT ` + disputeColumns + `
FROM disputes
WHERE complainant_id = $1 OR respondent_id = $1
ORDER BY created_at DESC
`
	return r.list(ctx, q, userID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Dispute, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (Dispute, error) {
	d, err := scanDispute(r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dispute{}, ErrNotFound
		}
		return Dispute{}, err
	}
	return d, nil
}

// GetForUpdate row-locks a dispute inside tx so a status change cannot race a
// concurrent admin action.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Dispute, error) {
	const q = `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1 FOR UPDATE`
	d, err := scanDispute(tx.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dispute{}, ErrNotFound
		}
		return Dispute{}, err
	}
	return d, nil
}

// UpdateLocked writes back the mutable fields of a dispute previously loaded
// with GetForUpdate.
func UpdateLocked(ctx context.Context, tx pgx.Tx, d Dispute) error {
	const q = `
UPDATE disputes
SET status = $2, thread_id = $3, outcome = $4, resolution = $5, updated_at = $6
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, d.ID,
		string(d.Status), nullIfEmpty(d.ThreadID),
		nullIfEmpty(string(d.Outcome)), nullIfEmpty(d.Resolution), d.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispute(row rowScanner) (Dispute, error) {
	var (
		d               Dispute
		status, outcome string
	)
	if err := row.Scan(
		&d.ID, &d.ComplainantID, &d.RespondentID, &d.BookingID, &d.PropertyID,
		&d.Subject, &d.Description, &status, &d.ThreadID, &outcome,
		&d.Resolution, &d.Documents, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return Dispute{}, err
	}
	d.Status = Status(status)
	d.Outcome = Party(outcome)
	return d, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
