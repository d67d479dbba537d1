package backgroundcheck

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("backgroundcheck: case not found")
	ErrDocumentNotFound = errors.New("backgroundcheck: document not found")
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// GetOrCreateByUser returns the user's open case, creating one on first use.
func (r *Repository) GetOrCreateByUser(ctx context.Context, userID string) (Case, error) {
	c, err := r.GetByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Case{}, err
	}

	const q = `
INSERT INTO background_checks (user_id, status)
VALUES ($1, 'pending')
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, status, created_at, updated_at
`
	var status string
	if err := r.db.QueryRow(ctx, q, userID).
		Scan(&c.ID, &c.UserID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Case{}, err
	}
	c.Status = CaseStatus(status)
	c.Documents = []Document{}
	return c, nil
}

func (r *Repository) GetByUser(ctx context.Context, userID string) (Case, error) {
	return r.get(ctx, r.db, `WHERE user_id = $1`, userID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (Case, error) {
	return r.get(ctx, r.db, `WHERE id = $1`, id)
}

func (r *Repository) List(ctx context.Context) ([]Case, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, status, created_at, updated_at FROM background_checks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Case
	for rows.Next() {
		var (
			c      Case
			status string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Status = CaseStatus(status)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		docs, err := r.documents(ctx, r.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Documents = docs
	}
	return out, nil
}

// SubmitDocument attaches one uploaded document to the case, pending review.
// InsertDocument adds a pending document inside tx so the case status can be
// recomputed in the same transaction.
func InsertDocument(ctx context.Context, tx pgx.Tx, caseID string, typ DocumentType, fileURL string) (Document, error) {
	const q = `
INSERT INTO background_documents (check_id, type, file_url, status)
VALUES ($1, $2, $3, 'pending')
RETURNING id, type, file_url, status, COALESCE(note,''), submitted_at, reviewed_at
`
	d, err := scanDocument(tx.QueryRow(ctx, q, caseID, string(typ), fileURL))
	if err != nil {
		return Document{}, err
	}
	return d, nil
}

// GetForUpdate locks the case row inside tx and loads its documents.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Case, error) {
	var (
		c      Case
		status string
	)
	const q = `SELECT id, user_id, status, created_at, updated_at FROM background_checks WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, q, id).Scan(&c.ID, &c.UserID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	c.Status = CaseStatus(status)
	docs, err := loadDocuments(ctx, tx, c.ID)
	if err != nil {
		return Case{}, err
	}
	c.Documents = docs
	return c, nil
}

// SaveLocked writes the case status and every reviewed document back.
func SaveLocked(ctx context.Context, tx pgx.Tx, c Case) error {
	const qCase = `UPDATE background_checks SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.Exec(ctx, qCase, c.ID, string(c.Status), c.UpdatedAt); err != nil {
		return err
	}
	const qDoc = `
UPDATE background_documents
SET status = $2, note = $3, reviewed_at = $4
WHERE id = $1
`
	for _, d := range c.Documents {
		if d.ReviewedAt == nil {
			continue
		}
		if _, err := tx.Exec(ctx, qDoc, d.ID, string(d.Status), d.Note, d.ReviewedAt); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) get(ctx context.Context, q querier, where string, arg any) (Case, error) {
	var (
		c      Case
		status string
	)
	err := q.QueryRow(ctx, `SELECT id, user_id, status, created_at, updated_at FROM background_checks `+where, arg).
		Scan(&c.ID, &c.UserID, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	c.Status = CaseStatus(status)
	docs, err := loadDocuments(ctx, q, c.ID)
	if err != nil {
		return Case{}, err
	}
	c.Documents = docs
	return c, nil
}

func (r *Repository) documents(ctx context.Context, q querier, caseID string) ([]Document, error) {
	return loadDocuments(ctx, q, caseID)
}

func loadDocuments(ctx context.Context, q querier, caseID string) ([]Document, error) {
	const sql = `
SELECT id, type, file_url, status, COALESCE(note,''), submitted_at, reviewed_at
FROM background_documents
WHERE check_id = $1
ORDER BY submitted_at
`
	rows, err := q.Query(ctx, sql, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		d           Document
		typ, status string
	)
	if err := row.Scan(&d.ID, &typ, &d.FileURL, &status, &d.Note, &d.SubmittedAt, &d.ReviewedAt); err != nil {
		return Document{}, err
	}
	d.Type = DocumentType(typ)
	d.Status = DocumentStatus(status)
	return d, nil
}
