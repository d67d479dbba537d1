package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// Insert appends one audit row. bookingID is optional; actions not tied to a
// booking (account changes, webhook rejections) pass nil.
func Insert(ctx context.Context, tx pgx.Tx, actorID string, bookingID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (actor_id, booking_id, action, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, actorID, bookingID, action, actor, s)
	return err
}
