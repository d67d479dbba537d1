package property

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("property: not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const propertyColumns = `
id, landlord_id, title, COALESCE(description,''), kind, city, address, bedrooms,
annual_rent::text, nightly_rate::text, listed, created_at, updated_at
`

func (r *Repository) Insert(ctx context.Context, p Property) (Property, error) {
	const q = `
INSERT INTO properties (landlord_id, title, description, kind, city, address, bedrooms, annual_rent, nightly_rate, listed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + propertyColumns + `
`
	return scanProperty(r.db.QueryRow(ctx, q,
		p.LandlordID, p.Title, p.Description, string(p.Kind), p.City, p.Address,
		p.Bedrooms, p.AnnualRent.StringFixed(2), p.NightlyRate.StringFixed(2), p.Listed,
	))
}

func (r *Repository) GetByID(ctx context.Context, id string) (Property, error) {
	p, err := scanProperty(r.db.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, err
	}
	return p, nil
}

func (r *Repository) ListByLandlord(ctx context.Context, landlordID string) ([]Property, error) {
	return r.list(ctx, `SELECT `+propertyColumns+` FROM properties WHERE landlord_id = $1 ORDER BY created_at DESC`, landlordID)
}

// ListListed is the public browse feed.
func (r *Repository) ListListed(ctx context.Context) ([]Property, error) {
	return r.list(ctx, `SELECT `+propertyColumns+` FROM properties WHERE listed ORDER BY created_at DESC`)
}

func (r *Repository) SetListed(ctx context.Context, id, landlordID string, listed bool) error {
	const q = `UPDATE properties SET listed = $3, updated_at = NOW() WHERE id = $1 AND landlord_id = $2`
	tag, err := r.db.Exec(ctx, q, id, landlordID, listed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Property, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (Property, error) {
	var (
		p                   Property
		kind, rent, nightly string
	)
	if err := row.Scan(
		&p.ID, &p.LandlordID, &p.Title, &p.Description, &kind, &p.City, &p.Address,
		&p.Bedrooms, &rent, &nightly, &p.Listed, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Property{}, err
	}
	var err error
	if p.AnnualRent, err = decimal.NewFromString(rent); err != nil {
		return Property{}, err
	}
	if p.NightlyRate, err = decimal.NewFromString(nightly); err != nil {
		return Property{}, err
	}
	p.Kind = Kind(kind)
	return p, nil
}
