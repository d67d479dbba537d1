package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/session"
)

type Handlers struct {
	Cfg   config.Config
	Users *user.Repository
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || strings.TrimSpace(req.Name) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "email and name are required")
		return
	}
	if len(req.Password) < 8 {
		api.WriteError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "password must be at least 8 characters")
		return
	}
	role := user.Role(req.Role)
	if role == "" {
		role = user.RoleTenant
	}
	// Admin accounts are provisioned out of band, never via self-serve signup.
	if role == user.RoleAdmin || !user.ValidRole(role) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid role")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	u, err := h.Users.Create(r.Context(), req.Email, strings.TrimSpace(req.Name), string(hash), role)
	if err != nil {
		api.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
		return
	}

	h.writeSession(w, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	h.writeSession(w, u)
}

func (h Handlers) writeSession(w http.ResponseWriter, u *user.User) {
	token, err := session.IssueToken(u.ID, string(u.Role), h.Cfg.JWTSecret, time.Now())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user": map[string]any{
			"id":    u.ID,
			"email": u.Email,
			"name":  u.Name,
			"role":  u.Role,
		},
	})
}
