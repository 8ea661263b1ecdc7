package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
	"github.com/upascal/fast-api-backend-template/internal/auth"
	"github.com/upascal/fast-api-backend-template/internal/models"
	"github.com/upascal/fast-api-backend-template/internal/utils"
)

type ctxKey string

const ctxUserKey ctxKey = "current_user"

// UserLoader is the slice of the user store the guard needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth guards routes behind bearer-token authentication.
type Auth struct {
	tokens *auth.TokenIssuer
	users  UserLoader
}

func NewAuth(tokens *auth.TokenIssuer, users UserLoader) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// RequireUser verifies the bearer token, loads the subject user, and
// rejects the request on the first failed step: missing header (401),
// bad signature (401), expired token (401), unknown user (404),
// inactive user (401). On success the user is pushed into the request
// context.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		user, err := a.users.GetByID(r.Context(), claims.Subject())
		if err != nil {
			utils.WriteError(w, err)
			return
		}

		if !user.IsActive {
			utils.WriteError(w, apperr.ErrTokenInvalid)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperuser is RequireUser plus an elevated-privilege check.
func (a *Auth) RequireSuperuser(next http.Handler) http.Handler {
	return a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsSuperuser {
			utils.WriteError(w, apperr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// UserFromContext returns the authenticated user set by RequireUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxUserKey).(*models.User)
	return user, ok
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.ErrUnauthorized
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperr.ErrUnauthorized
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperr.ErrUnauthorized
	}

	return token, nil
}
