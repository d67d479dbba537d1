package backgroundcheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/audit"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

type Handlers struct {
	Cfg  config.Config
	DB   *pgxpool.Pool
	Repo *Repository
}

// caseView is the API shape: the case plus its derived progress.
type caseView struct {
	Case
	Progress int `json:"progress"`
}

func view(c Case) caseView {
	return caseView{Case: c, Progress: Progress(c.Documents)}
}

// GetMine returns the caller's verification case, creating it on first visit.
func (h Handlers) GetMine(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	c, err := h.Repo.GetOrCreateByUser(r.Context(), actor.ID)
	if err != nil {
		h.internal(w, "load verification failed", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, view(c))
}

// SubmitDocument attaches an uploaded document to the caller's case.
func (h Handlers) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var body struct {
		Type    string `json:"type"`
		FileURL string `json:"fileUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	typ, err := ParseDocumentType(body.Type)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if strings.TrimSpace(body.FileURL) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "fileUrl is required")
		return
	}

	c, err := h.Repo.GetOrCreateByUser(r.Context(), actor.ID)
	if err != nil {
		h.internal(w, "load verification failed", err)
		return
	}

	var doc Document
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetForUpdate(r.Context(), tx, c.ID)
		if err != nil {
			return err
		}
		d, err := InsertDocument(r.Context(), tx, cur.ID, typ, strings.TrimSpace(body.FileURL))
		if err != nil {
			return err
		}
		next, err := AddDocument(cur, d)
		if err != nil {
			var re ReviewError
			if errors.As(err, &re) {
				api.WriteError(w, http.StatusConflict, re.Code, re.Message)
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		// A case already in review falls back to pending here.
		if next.Status != cur.Status {
			if err := SaveLocked(r.Context(), tx, next); err != nil {
				return err
			}
		}
		doc = d
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.internal(w, "submit document failed", err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, doc)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.Repo.List(r.Context())
	if err != nil {
		h.internal(w, "list cases failed", err)
		return
	}
	out := make([]caseView, 0, len(cases))
	for _, c := range cases {
		out = append(out, view(c))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "CASE_NOT_FOUND", "case not found")
			return
		}
		h.internal(w, "load case failed", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, view(c))
}

// ReviewDocument records an admin verdict on one document and recomputes the
// case.
func (h Handlers) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil || !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	var body struct {
		Verdict string `json:"verdict"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	verdict, err := ParseDocumentStatus(body.Verdict)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	caseID := chi.URLParam(r, "id")
	docID := chi.URLParam(r, "docId")

	var out Case
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetForUpdate(r.Context(), tx, caseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				api.WriteError(w, http.StatusNotFound, "CASE_NOT_FOUND", "case not found")
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		next, err := ReviewDocument(cur, docID, verdict, body.Note, time.Now())
		if err != nil {
			var re ReviewError
			if errors.As(err, &re) {
				api.WriteError(w, http.StatusConflict, re.Code, re.Message)
				return pgx.ErrTxCommitRollback
			}
			return err
		}
		if err := SaveLocked(r.Context(), tx, next); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, actor.ID, nil, "BACKGROUND_DOCUMENT_REVIEWED", "admin", map[string]any{
			"caseId": next.ID, "documentId": docID, "verdict": verdict, "progress": Progress(next.Documents),
		})
		out = next
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.internal(w, "review document failed", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, view(out))
}

// Decide is the explicit admin call that moves a case to approved or
// rejected.
func (h Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil || !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	var body struct {
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	if body.Decision != string(CaseApproved) && body.Decision != string(CaseRejected) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "decision must be approved or rejected")
		return
	}

	caseID := chi.URLParam(r, "id")
	var out Case
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		cur, err := GetForUpdate(r.Context(), tx, caseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				api.WriteError(w, http.StatusNotFound, "CASE_NOT_FOUND", "case not found")
				return pgx.ErrTxCommitRollback
			}
			return err
		}

		var next Case
		if body.Decision == string(CaseApproved) {
			next, err = ApproveCase(cur, time.Now())
		} else {
			next, err = RejectCase(cur, time.Now())
		}
		if err != nil {
			var re ReviewError
			if errors.As(err, &re) {
				api.WriteError(w, http.StatusConflict, re.Code, re.Message)
				return pgx.ErrTxCommitRollback
			}
			return err
		}

		if err := SaveLocked(r.Context(), tx, next); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, actor.ID, nil, "BACKGROUND_CHECK_DECIDED", "admin", map[string]any{
			"caseId": next.ID, "decision": next.Status,
		})
		out = next
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.internal(w, "decide case failed", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, view(out))
}

func (h Handlers) internal(w http.ResponseWriter, msg string, err error) {
	if h.Cfg.AppEnv != "prod" {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("%s: %v", msg, err))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
