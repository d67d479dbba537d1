package messaging

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres Store. Thread uniqueness is enforced twice: a
// lookup before insert for the common path, and a unique index on
// (context_type, context_id, participants) for the race where two callers
// create the same thread at once.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const threadColumns = `id, kind, context_type, context_id, participants, created_at`

func (r *Repository) CreateOrReuseThread(ctx context.Context, contextType, contextID string, participants []string) (Thread, error) {
	key := participantKey(participants)

	const qFind = `
SELECT ` + threadColumns + `
FROM threads
WHERE context_type = $1 AND context_id = $2 AND participants = $3
`
	t, err := scanThread(r.db.QueryRow(ctx, qFind, contextType, contextID, key))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Thread{}, err
	}

	const qInsert = `
INSERT INTO threads (kind, context_type, context_id, participants)
VALUES ($1, $2, $3, $4)
ON CONFLICT (context_type, context_id, participants) DO UPDATE SET kind = threads.kind
RETURNING ` + threadColumns + `
`
	return scanThread(r.db.QueryRow(ctx, qInsert, string(kindFor(key)), contextType, contextID, key))
}

func (r *Repository) FindThread(ctx context.Context, contextType, contextID string) (Thread, error) {
	const q = `
SELECT ` + threadColumns + `
FROM threads
WHERE context_type = $1 AND context_id = $2
ORDER BY created_at
LIMIT 1
`
	t, err := scanThread(r.db.QueryRow(ctx, q, contextType, contextID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Thread{}, ErrThreadNotFound
		}
		return Thread{}, err
	}
	return t, nil
}

func (r *Repository) Post(ctx context.Context, threadID, senderID, body string) (Message, error) {
	const q = `
INSERT INTO messages (thread_id, sender_id, body)
VALUES ($1, $2, $3)
RETURNING id, thread_id, sender_id, body, created_at
`
	var m Message
	err := r.db.QueryRow(ctx, q, threadID, senderID, body).
		Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Body, &m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

func (r *Repository) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	const q = `
SELECT id, thread_id, sender_id, body, created_at
FROM messages
WHERE thread_id = $1
ORDER BY created_at
`
	rows, err := r.db.Query(ctx, q, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) ListThreadsByParticipant(ctx context.Context, userID string) ([]Thread, error) {
	const q = `
SELECT ` + threadColumns + `
FROM threads
WHERE $1 = ANY(participants)
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (Thread, error) {
	var (
		t    Thread
		kind string
	)
	if err := row.Scan(&t.ID, &kind, &t.ContextType, &t.ContextID, &t.Participants, &t.CreatedAt); err != nil {
		return Thread{}, err
	}
	t.Kind = Kind(kind)
	return t, nil
}
