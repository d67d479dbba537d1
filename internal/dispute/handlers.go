package dispute

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/adminaction"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/audit"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/messaging"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

type Handlers struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Repo    *Repository
	Threads messaging.Store
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var body struct {
		RespondentID string   `json:"respondentId"`
		BookingID    string   `json:"bookingId"`
		PropertyID   string   `json:"propertyId"`
		Subject      string   `json:"subject"`
		Description  string   `json:"description"`
		Documents    []string `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	if body.RespondentID == "" || body.Subject == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "respondentId and subject are required")
		return
	}
	if body.RespondentID == actor.ID {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "cannot open a dispute against yourself")
		return
	}

	d, err := h.Repo.Insert(r.Context(), Dispute{
		ComplainantID: actor.ID,
		RespondentID:  body.RespondentID,
		BookingID:     body.BookingID,
		PropertyID:    body.PropertyID,
		Subject:       body.Subject,
		Description:   body.Description,
		Documents:     body.Documents,
	})
	if err != nil {
		h.internal(w, "create dispute failed", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, d)
}

// List returns all disputes for admins and only the caller's own for everyone
// else.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var (
		out []Dispute
		err error
	)
	if actor.IsAdmin() {
		out, err = h.Repo.List(r.Context())
	} else {
		out, err = h.Repo.ListByParty(r.Context(), actor.ID)
	}
	if err != nil {
		h.internal(w, "list disputes failed", err)
		return
	}
	if out == nil {
		out = []Dispute{}
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	d, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "DISPUTE_NOT_FOUND", "dispute not found")
			return
		}
		h.internal(w, "load dispute failed", err)
		return
	}
	if !actor.IsAdmin() && actor.ID != d.ComplainantID && actor.ID != d.RespondentID {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not a party to this dispute")
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

// Advance moves the dispute through its investigation states.
func (h Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	to, err := ParseStatus(body.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	h.transition(w, r, "DISPUTE_STATUS_CHANGED", func(d Dispute, now time.Time) (Dispute, error) {
		return Advance(d, to, now)
	})
}

// Resolve terminates the dispute in favour of one party. The conversation
// thread is created (or reused) first so the verdict always lands somewhere
// both parties can read it.
func (h Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Party string `json:"party"`
		Note  string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	party, err := ParseParty(body.Party)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	h.terminate(w, r, adminaction.ActionResolveDispute,
		fmt.Sprintf("Dispute resolved in favour of the %s", party),
		func(d Dispute, now time.Time) (Dispute, error) {
			return ResolveInFavorOf(d, party, body.Note, now)
		})
}

// Close terminates the dispute with no verdict.
func (h Handlers) Close(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}

	h.terminate(w, r, adminaction.ActionCloseDispute,
		"Dispute closed without resolution",
		func(d Dispute, now time.Time) (Dispute, error) {
			return CloseWithoutResolution(d, body.Note, now)
		})
}

// terminate runs a resolution action: ensure the thread, lock the row, apply,
// record the admin action, announce in the thread.
func (h Handlers) terminate(w http.ResponseWriter, r *http.Request, action adminaction.ActionType, announcement string, apply func(Dispute, time.Time) (Dispute, error)) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil || !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	id := chi.URLParam(r, "id")
	d, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "DISPUTE_NOT_FOUND", "dispute not found")
			return
		}
		h.internal(w, "load dispute failed", err)
		return
	}

	// Thread first. CreateOrReuseThread is idempotent, so retrying a failed
	// resolution never duplicates the conversation.
	thread, err := h.Threads.CreateOrReuseThread(r.Context(), "dispute", d.ID,
		[]string{d.ComplainantID, d.RespondentID, actor.ID})
	if err != nil {
		h.internal(w, "create dispute thread failed", err)
		return
	}

	var out Dispute
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}
		next, err := apply(cur, time.Now())
		if err != nil {
			var ite IllegalTransitionError
			if errors.As(err, &ite) {
				api.WriteError(w, http.StatusConflict, "DISPUTE_TRANSITION_INVALID", ite.Error())
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		next.ThreadID = thread.ID
		if err := UpdateLocked(r.Context(), tx, next); err != nil {
			return err
		}

		_ = adminaction.Insert(r.Context(), tx, next.ID, action, next.Resolution, actor.ID, map[string]any{
			"from": cur.Status, "to": next.Status, "outcome": next.Outcome,
		})
		var bid *string
		if next.BookingID != "" {
			bid = &next.BookingID
		}
		_ = audit.Insert(r.Context(), tx, actor.ID, bid, string(action), "admin", map[string]any{
			"disputeId": next.ID, "to": next.Status,
		})

		out = next
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.internal(w, "terminate dispute failed", err)
		return
	}

	if _, err := h.Threads.Post(r.Context(), thread.ID, messaging.SystemSender, announcement); err != nil {
		// Announcement is best-effort; the verdict is already committed.
		log.Printf("dispute %s: announce failed: %v", out.ID, err)
	}

	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) transition(w http.ResponseWriter, r *http.Request, action string, apply func(Dispute, time.Time) (Dispute, error)) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil || !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	id := chi.URLParam(r, "id")
	var out Dispute
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				api.WriteError(w, http.StatusNotFound, "DISPUTE_NOT_FOUND", "dispute not found")
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		next, err := apply(cur, time.Now())
		if err != nil {
			var ite IllegalTransitionError
			if errors.As(err, &ite) {
				api.WriteError(w, http.StatusConflict, "DISPUTE_TRANSITION_INVALID", ite.Error())
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		if err := UpdateLocked(r.Context(), tx, next); err != nil {
			return err
		}
		var bid *string
		if next.BookingID != "" {
			bid = &next.BookingID
		}
		_ = audit.Insert(r.Context(), tx, actor.ID, bid, action, "admin", map[string]any{
			"disputeId": next.ID, "from": cur.Status, "to": next.Status,
		})
		out = next
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.internal(w, "update dispute failed", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) internal(w http.ResponseWriter, msg string, err error) {
	if h.Cfg.AppEnv != "prod" {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("%s: %v", msg, err))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
