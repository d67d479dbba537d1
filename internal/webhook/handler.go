package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/audit"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/payment"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

// Recorder counts processed webhook deliveries.
type Recorder interface {
	WebhookProcessed(event string)
}

type Handler struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Bookings *booking.Service
	Metrics  Recorder
}

// ServeHTTP processes Paystack event deliveries. Verified requests are always
// answered 200 so Paystack stops retrying; failures are logged and left for
// reconciliation.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sig := strings.TrimSpace(r.Header.Get("X-Paystack-Signature"))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	if !VerifyPaystackWebhook(body, sig, h.Cfg.Paystack.WebhookSecret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook signature")
		return
	}

	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Event == "" {
		// Unparseable but authentic; accept to stop retries.
		w.WriteHeader(http.StatusOK)
		return
	}

	payloadHash := sha256Hex(body)
	eventID := env.Data.Reference + ":" + env.Event
	if env.Data.Reference == "" {
		eventID = payloadHash
	}

	// Idempotency gate first, in its own tx, so a replayed delivery is dropped
	// before any side effect.
	duplicate := false
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := insertWebhookEvent(r.Context(), tx, env.Event, eventID, payloadHash); err != nil {
			if isUniqueViolation(err) {
				duplicate = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("webhook gate error event=%s id=%s err=%v", env.Event, eventID, err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if duplicate {
		if h.Cfg.AppEnv != "prod" {
			log.Printf("webhook already processed event=%s id=%s", env.Event, eventID)
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	switch env.Event {
	case "charge.success":
		h.handleChargeSuccess(r.Context(), env)
	case "refund.processed":
		h.handleRefundProcessed(r.Context(), env)
	}

	if h.Metrics != nil {
		h.Metrics.WebhookProcessed(env.Event)
	}
	w.WriteHeader(http.StatusOK)
}

// handleChargeSuccess re-drives the booking action the payment belongs to.
// The booking service verifies the reference with Paystack itself, so a
// forged reference in the event body cannot advance anything.
func (h Handler) handleChargeSuccess(ctx context.Context, env eventEnvelope) {
	ref := env.Data.Reference
	bookingID := payment.ParseKeyFromReference(ref, "booking_id")
	purpose := payment.ParseKeyFromReference(ref, "purpose")
	if bookingID == "" || purpose == "" {
		if h.Cfg.AppEnv != "prod" {
			log.Printf("charge.success: reference %q carries no booking", ref)
		}
		return
	}

	act, ok := actionForPurpose(purpose)
	if !ok {
		log.Printf("charge.success: unknown purpose %q ref=%s", purpose, ref)
		return
	}

	_, err := h.Bookings.Do(ctx, bookingID, act, booking.Payload{PaymentReference: ref})
	if err != nil {
		var ite booking.IllegalTransitionError
		if errors.As(err, &ite) {
			// The booking already moved on (user confirmed in the UI before
			// the webhook landed). Nothing to do.
			return
		}
		log.Printf("charge.success: apply %s to booking %s failed: %v", act, bookingID, err)
		return
	}

	_ = db.WithTx(ctx, h.DB, func(tx pgx.Tx) error {
		return audit.Insert(ctx, tx, "paystack", &bookingID, "PAYMENT_CONFIRMED", "webhook", map[string]any{
			"reference": ref, "purpose": purpose,
		})
	})
}

// handleRefundProcessed moves the matching ledger row to refunded. Refunds
// initiated by an admin already did this; the gate below makes the event a
// no-op in that case.
func (h Handler) handleRefundProcessed(ctx context.Context, env eventEnvelope) {
	ref := env.Data.Reference
	if ref == "" {
		return
	}
	err := db.WithTx(ctx, h.DB, func(tx pgx.Tx) error {
		const q = `
UPDATE payments
SET status = 'refunded', updated_at = NOW()
WHERE reference = $1 AND status = 'completed'
`
		if _, err := tx.Exec(ctx, q, ref); err != nil {
			return err
		}
		bookingID := payment.ParseKeyFromReference(ref, "booking_id")
		var bid *string
		if bookingID != "" {
			bid = &bookingID
		}
		return audit.Insert(ctx, tx, "paystack", bid, "PAYMENT_REFUNDED", "webhook", map[string]any{
			"reference": ref,
		})
	})
	if err != nil {
		log.Printf("refund.processed: ref=%s err=%v", ref, err)
	}
}

func actionForPurpose(purpose string) (booking.Action, bool) {
	switch purpose {
	case "sign_off_fee":
		return booking.ActionPaySignOffFee, true
	case "rental_payment":
		return booking.ActionPayRental, true
	case "move_in_payment":
		return booking.ActionPayMoveIn, true
	}
	return "", false
}

func insertWebhookEvent(ctx context.Context, tx pgx.Tx, event, eventID, payloadHash string) error {
	const q = `
INSERT INTO webhook_events (event, event_id, payload_hash, processed_at)
VALUES ($1, $2, $3, NOW())
`
	_, err := tx.Exec(ctx, q, event, eventID, payloadHash)
	return err
}

func sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if ok := errors.As(err, &pgErr); ok {
		return pgErr.Code == "23505"
	}
	return false
}

type eventEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		ID         int64     `json:"id"`
		Reference  string    `json:"reference"`
		Status     string    `json:"status"`
		AmountKobo int64     `json:"amount"`
		PaidAt     time.Time `json:"paid_at"`
	} `json:"data"`
}
