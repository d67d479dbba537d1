package messaging

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
)

type Handlers struct {
	Store Store
}

func (h Handlers) ListThreads(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	threads, err := h.Store.ListThreadsByParticipant(r.Context(), actor.ID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if threads == nil {
		threads = []Thread{}
	}
	api.WriteJSON(w, http.StatusOK, threads)
}

func (h Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Store.ListMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}
	api.WriteJSON(w, http.StatusOK, msgs)
}

func (h Handlers) PostMessage(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Body == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "body is required")
		return
	}

	m, err := h.Store.Post(r.Context(), chi.URLParam(r, "id"), actor.ID, body.Body)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			api.WriteError(w, http.StatusNotFound, "THREAD_NOT_FOUND", "thread not found")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, m)
}
