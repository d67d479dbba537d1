package property

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
)

type Handlers struct {
	Cfg  config.Config
	Repo *Repository
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	if actor.Role != user.RoleLandlord && !actor.IsAdmin() {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "only landlords can list properties")
		return
	}

	var body struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Kind        string          `json:"kind"`
		City        string          `json:"city"`
		Address     string          `json:"address"`
		Bedrooms    int             `json:"bedrooms"`
		AnnualRent  decimal.Decimal `json:"annualRent"`
		NightlyRate decimal.Decimal `json:"nightlyRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}
	if strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.City) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "title and city are required")
		return
	}

	kind := Kind(body.Kind)
	switch kind {
	case KindApartment, KindDuplex, KindBungalow, KindShortlet:
	default:
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", fmt.Sprintf("unknown kind %q", body.Kind))
		return
	}
	if kind == KindShortlet {
		if body.NightlyRate.LessThanOrEqual(decimal.Zero) {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "shortlets need a nightly rate > 0")
			return
		}
	} else if body.AnnualRent.LessThanOrEqual(decimal.Zero) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "annual rent must be > 0")
		return
	}

	p, err := h.Repo.Insert(r.Context(), Property{
		LandlordID:  actor.ID,
		Title:       strings.TrimSpace(body.Title),
		Description: body.Description,
		Kind:        kind,
		City:        strings.TrimSpace(body.City),
		Address:     body.Address,
		Bedrooms:    body.Bedrooms,
		AnnualRent:  body.AnnualRent,
		NightlyRate: body.NightlyRate,
		Listed:      true,
	})
	if err != nil {
		h.internal(w, "create property failed", err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, p)
}

// List shows the public feed, or the caller's own portfolio with ?mine=1.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var (
		out []Property
		err error
	)
	if r.URL.Query().Get("mine") != "" {
		out, err = h.Repo.ListByLandlord(r.Context(), actor.ID)
	} else {
		out, err = h.Repo.ListListed(r.Context())
	}
	if err != nil {
		h.internal(w, "list properties failed", err)
		return
	}
	if out == nil {
		out = []Property{}
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "PROPERTY_NOT_FOUND", "property not found")
			return
		}
		h.internal(w, "load property failed", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, p)
}

// SetListed toggles a property in or out of the public feed.
func (h Handlers) SetListed(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var body struct {
		Listed bool `json:"listed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json body")
		return
	}

	err := h.Repo.SetListed(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Listed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "PROPERTY_NOT_FOUND", "property not found")
			return
		}
		h.internal(w, "update property failed", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"listed": body.Listed})
}

func (h Handlers) internal(w http.ResponseWriter, msg string, err error) {
	if h.Cfg.AppEnv != "prod" {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", fmt.Sprintf("%s: %v", msg, err))
		return
	}
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
