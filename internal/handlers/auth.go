package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
	"github.com/upascal/fast-api-backend-template/internal/auth"
	"github.com/upascal/fast-api-backend-template/internal/middleware"
	"github.com/upascal/fast-api-backend-template/internal/utils"
)

type AuthHandler struct {
	auth *auth.Service
	log  *slog.Logger
}

// Token handles POST /auth/token. The body is an OAuth2-style form;
// the username field carries the email.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, fmt.Errorf("%w: invalid form body", apperr.ErrUnprocessable))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		utils.WriteError(w, fmt.Errorf("%w: username and password are required", apperr.ErrUnprocessable))
		return
	}

	token, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, apperr.ErrAuthFailed) {
			h.log.Error("login failed", slog.Any("error", err))
		}
		utils.WriteError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "", token)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	utils.Respond(w, http.StatusOK, "", user.Response())
}
