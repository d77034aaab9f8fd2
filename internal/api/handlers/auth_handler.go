package handlers

import (
	"net/http"
	"time"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/services"
)

type AuthHandler struct {
	auth services.AuthService
	ttl  time.Duration
}

func NewAuthHandler(auth services.AuthService, ttl time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, ttl: ttl}
}

// Register creates a proponent account. Evaluators and admins are created
// through pnabctl.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	u, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, userView(u))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	token, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, types.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.ttl.Seconds()),
		User:        userView(u),
	})
}
