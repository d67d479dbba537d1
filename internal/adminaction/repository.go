package adminaction

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// Insert records an admin override against a booking, payment or dispute.
// subjectID is the id of the row being overridden.
func Insert(ctx context.Context, tx pgx.Tx, subjectID string, actionType ActionType, reason, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO admin_actions (subject_id, action_type, reason, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, subjectID, string(actionType), reason, actor, s)
	return err
}
