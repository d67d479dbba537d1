package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/adminaction"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/audit"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/property"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/db"
)

// AgreementLinks mints shareable signing links for freshly sent agreements.
// The portal package provides the implementation; the handler only needs the
// token back.
type AgreementLinks interface {
	IssueToken(ctx context.Context, bookingID string, expiresAt time.Time) (string, error)
}

type Handlers struct {
	Cfg        config.Config
	DB         *pgxpool.Pool
	Service    *Service
	Properties *property.Repository
	Links      AgreementLinks
}

// Create opens a booking: a tenant requesting a viewing on a listed property.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var body struct {
		PropertyID string `json:"propertyId"`
		Type       string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}

	prop, err := h.Properties.GetByID(r.Context(), body.PropertyID)
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "PROPERTY_NOT_FOUND", "property not found")
			return
		}
		h.internal(w, "load property failed", err)
		return
	}
	if prop.LandlordID == actor.ID {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "cannot book your own property")
		return
	}

	typ := Type(body.Type)
	if typ == "" {
		typ = TypeLongTerm
		if prop.Kind == property.KindShortlet {
			typ = TypeShortlet
		}
	}

	b, err := h.Service.RequestViewing(r.Context(), prop.ID, prop.LandlordID, actor.ID, typ)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

// List is role-scoped: tenants see their bookings, landlords their
// properties' bookings, admins everything.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var (
		out []Booking
		err error
	)
	switch {
	case actor.IsAdmin():
		out, err = h.Service.Store.ListAll(r.Context())
	case actor.Role == user.RoleLandlord:
		out, err = h.Service.Store.ListByLandlord(r.Context(), actor.ID)
	default:
		out, err = h.Service.Store.ListByTenant(r.Context(), actor.ID)
	}
	if err != nil {
		h.internal(w, "list bookings failed", err)
		return
	}
	if out == nil {
		out = []Booking{}
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	b, err := h.Service.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !actor.IsAdmin() && actor.ID != b.TenantID && actor.ID != b.LandlordID {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not a party to this booking")
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

// Act applies one lifecycle action to the booking.
func (h Handlers) Act(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	id := chi.URLParam(r, "id")

	var body struct {
		Action string `json:"action"`
		Payload
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	act, err := ParseAction(body.Action)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	cur, err := h.Service.Store.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !h.allowed(actor, cur, act) {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", fmt.Sprintf("%s may not %s this booking", actor.Role, act))
		return
	}

	b, err := h.Service.Do(r.Context(), id, act, body.Payload)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	// A freshly sent agreement gets a shareable signing link.
	if act == ActionSendAgreement && h.Links != nil {
		token, err := h.Links.IssueToken(r.Context(), b.ID, time.Now().Add(30*24*time.Hour))
		if err != nil {
			h.internal(w, "create agreement link failed", err)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"booking": b, "agreementToken": token})
		return
	}

	api.WriteJSON(w, http.StatusOK, b)
}

// ForceCancel is the admin override for stuck bookings. The cancellation
// still runs through the state machine, so terminal bookings stay terminal.
func (h Handlers) ForceCancel(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil || !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	id := chi.URLParam(r, "id")
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}

	b, err := h.Service.Do(r.Context(), id, ActionCancel, Payload{Reason: body.Reason})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := adminaction.Insert(r.Context(), tx, b.ID, adminaction.ActionForceCancelBooking, body.Reason, actor.ID, nil); err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, actor.ID, &b.ID, string(adminaction.ActionForceCancelBooking), "admin", map[string]any{
			"reason": body.Reason,
		})
	})
	if err != nil {
		h.internal(w, "record admin action failed", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, b)
}

// allowed maps each action to the side of the booking that may trigger it.
func (h Handlers) allowed(actor *api.Actor, b Booking, act Action) bool {
	if actor.IsAdmin() {
		return true
	}
	switch act {
	case ActionScheduleViewing, ActionCompleteViewing, ActionApprove, ActionReject,
		ActionSendAgreement, ActionRequestMoveInPayment, ActionActivate, ActionComplete:
		return actor.ID == b.LandlordID
	case ActionProceed, ActionDecline, ActionPaySignOffFee, ActionSubmitApplication,
		ActionPayRental, ActionSignAgreement, ActionPayMoveIn:
		return actor.ID == b.TenantID
	case ActionCancel:
		return actor.ID == b.TenantID || actor.ID == b.LandlordID
	}
	return false
}

func (h Handlers) writeDomainError(w http.ResponseWriter, err error) {
	var (
		ite IllegalTransitionError
		ve  ValidationError
		ext ExternalOperationError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found")
	case errors.Is(err, ErrVersionConflict):
		api.WriteError(w, http.StatusConflict, "VERSION_CONFLICT", "booking was modified concurrently, reload and retry")
	case errors.As(err, &ite):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", ite.Error())
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, ve.Code, ve.Message)
	case errors.As(err, &ext):
		api.WriteError(w, http.StatusBadGateway, "EXTERNAL_OPERATION_FAILED", ext.Error())
	default:
		h.internal(w, "booking operation failed", err)
	}
}

func (h Handlers) internal(w http.ResponseWriter, msg string, err error) {
	if h.Cfg.AppEnv != "prod" {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("%s: %v", msg, err))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
