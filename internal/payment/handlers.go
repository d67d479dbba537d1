package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/adminaction"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/audit"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/paystack"
)

type Handlers struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Repo     *Repository
	Bookings booking.Store
	Client   paystack.Client
}

// RequestPayment opens a Paystack checkout session for one of a booking's
// charges and returns the hosted payment URL. Repeating the request while a
// session is still pending returns the existing one.
func (h Handlers) RequestPayment(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var body struct {
		Purpose string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}

	b, err := h.Bookings.Get(r.Context(), bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found")
			return
		}
		h.internal(w, "load booking failed", err)
		return
	}
	if !actor.IsAdmin() && actor.ID != b.TenantID {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only the tenant can pay for this booking")
		return
	}

	amount, err := amountFor(b, body.Purpose)
	if err != nil {
		api.WriteError(w, http.StatusConflict, "PAYMENT_NOT_DUE", err.Error())
		return
	}

	// Idempotency: an open checkout session for the same booking+purpose is
	// reused rather than stacked.
	if existing, err := h.Repo.FindPending(r.Context(), bookingID, body.Purpose); err == nil {
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"paymentId":        existing.ID,
			"reference":        existing.Reference,
			"authorizationUrl": existing.CheckoutURL,
		})
		return
	} else if !errors.Is(err, ErrNotFound) {
		h.internal(w, "lookup pending payment failed", err)
		return
	}

	reference := BuildReference(bookingID, body.Purpose)
	checkoutURL, ref, err := h.Client.InitializeTransaction(r.Context(),
		actor.Email, amount.Mul(kobosPerNaira).IntPart(), reference, h.Cfg.Currency)
	if err != nil {
		h.internal(w, "initialize transaction failed", err)
		return
	}

	rec, err := h.Repo.Insert(r.Context(), Record{
		BookingID:   bookingID,
		Reference:   ref,
		Purpose:     body.Purpose,
		Amount:      amount,
		Fee:         decimal.Zero,
		Currency:    h.Cfg.Currency,
		Status:      StatusPending,
		Payer:       b.TenantID,
		Recipient:   b.LandlordID,
		Method:      "paystack",
		CheckoutURL: checkoutURL,
	})
	if err != nil {
		h.internal(w, "insert payment failed", err)
		return
	}

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		return audit.Insert(r.Context(), tx, actor.ID, &bookingID, "PAYMENT_REQUESTED", string(actor.Role), map[string]any{
			"paymentId": rec.ID, "purpose": body.Purpose, "reference": ref,
		})
	})
	if err != nil {
		h.internal(w, "audit payment request failed", err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"paymentId":        rec.ID,
		"reference":        rec.Reference,
		"authorizationUrl": rec.CheckoutURL,
	})
}

// amountFor resolves which charge on the booking the purpose refers to, and
// rejects purposes whose charge is absent or already settled.
func amountFor(b booking.Booking, purpose string) (decimal.Decimal, error) {
	switch purpose {
	case "sign_off_fee":
		if b.SignOffFee == nil {
			return decimal.Zero, fmt.Errorf("booking has no sign-off fee")
		}
		if b.SignOffFee.Paid {
			return decimal.Zero, fmt.Errorf("sign-off fee already paid")
		}
		return b.SignOffFee.Amount, nil
	case "rental_payment", "move_in_payment":
		if b.Payment == nil {
			return decimal.Zero, fmt.Errorf("booking has no payment due")
		}
		if b.Payment.Paid {
			return decimal.Zero, fmt.Errorf("payment already settled")
		}
		return b.Payment.Amount, nil
	}
	return decimal.Zero, fmt.Errorf("unknown purpose %q", purpose)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Repo.List(r.Context())
	if err != nil {
		h.internal(w, "list payments failed", err)
		return
	}
	if recs == nil {
		recs = []Record{}
	}
	api.WriteJSON(w, http.StatusOK, recs)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "payment not found")
			return
		}
		h.internal(w, "load payment failed", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// UpdateStatus is the admin override for stuck ledger rows: completing a
// payment the webhook missed, failing an abandoned one, or refunding a
// settled one. Refunds go back through Paystack before the row moves.
func (h Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil || !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	id := chi.URLParam(r, "id")
	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	next, err := ParseStatus(body.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if body.Reason == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "reason is required")
		return
	}

	var out *Record
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		rec, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				api.WriteError(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "payment not found")
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		if !CanTransition(rec.Status, next) {
			api.WriteError(w, http.StatusConflict, "PAYMENT_TRANSITION_INVALID",
				fmt.Sprintf("cannot move payment from %s to %s", rec.Status, next))
			return pgx.ErrTxCommitRollback
		}

		if next == StatusRefunded {
			if err := h.Client.Refund(r.Context(), rec.Reference); err != nil {
				return fmt.Errorf("refund %s: %w", rec.Reference, err)
			}
		}

		if err := UpdateStatus(r.Context(), tx, rec.ID, next); err != nil {
			return err
		}

		action := actionForStatus(next)
		_ = adminaction.Insert(r.Context(), tx, rec.ID, action, body.Reason, actor.ID, map[string]any{
			"from": rec.Status, "to": next, "reference": rec.Reference,
		})
		bid := rec.BookingID
		var bidp *string
		if bid != "" {
			bidp = &bid
		}
		_ = audit.Insert(r.Context(), tx, actor.ID, bidp, string(action), string(actor.Role), map[string]any{
			"paymentId": rec.ID, "from": rec.Status, "to": next,
		})

		rec.Status = next
		out = rec
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.internal(w, "update payment failed", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, out)
}

func actionForStatus(next Status) adminaction.ActionType {
	switch next {
	case StatusCompleted:
		return adminaction.ActionMarkPaymentCompleted
	case StatusRefunded:
		return adminaction.ActionRefundPayment
	default:
		return adminaction.ActionMarkPaymentFailed
	}
}

func (h Handlers) internal(w http.ResponseWriter, msg string, err error) {
	if h.Cfg.AppEnv != "prod" {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("%s: %v", msg, err))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
