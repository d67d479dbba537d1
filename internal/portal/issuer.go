package portal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

// Issuer mints agreement tokens for other packages without exposing the
// token table.
type Issuer struct {
	DB *pgxpool.Pool
}

func (i Issuer) IssueToken(ctx context.Context, bookingID string, expiresAt time.Time) (string, error) {
	var token string
	err := db.WithTx(ctx, i.DB, func(tx pgx.Tx) error {
		tr, err := InsertToken(ctx, tx, bookingID, expiresAt)
		if err != nil {
			return err
		}
		token = tr.Token
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
