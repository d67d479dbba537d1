package portal

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Bookings *booking.Service
}

// View shows the booking behind an agreement link: current status, the
// agreement document, and the timeline so far.
func (h Handlers) View(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing token")
		return
	}

	now := time.Now()
	const q = `
SELECT booking_id
FROM portal_tokens
WHERE token = $1 AND revoked_at IS NULL AND expires_at > $2
`
	var bookingID string
	if err := h.DB.QueryRow(r.Context(), q, token, now).Scan(&bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "agreement link not found")
		return
	}

	b, err := h.Bookings.Store.Get(r.Context(), bookingID)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":   b,
		"agreement": b.Agreement,
	})
}

// Sign executes the tenant's signature through the tokenized link. The token
// row is locked while it is validated so two clicks cannot race each other
// past the state machine.
func (h Handlers) Sign(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing token")
		return
	}

	now := time.Now()
	var bookingID string
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		tr, err := GetActiveByTokenForUpdate(r.Context(), tx, token, now)
		if err != nil {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "agreement link not found")
			return pgx.ErrTxCommitRollback
		}
		bookingID = tr.BookingID
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	b, err := h.Bookings.Do(r.Context(), bookingID, booking.ActionSignAgreement, booking.Payload{})
	if err != nil {
		var ite booking.IllegalTransitionError
		if errors.As(err, &ite) {
			api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", ite.Error())
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, b)
}
