package handlers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/upascal/fast-api-backend-template/internal/auth"
	"github.com/upascal/fast-api-backend-template/internal/models"
)

// UserStore is the slice of the store the handlers need.
type UserStore interface {
	Create(ctx context.Context, in models.UserCreate) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, in models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, skip, limit int) ([]models.User, error)
}

type Handler struct {
	Auth   *AuthHandler
	Users  *UserHandler
	Health *HealthHandler
}

func NewHandler(users UserStore, authSvc *auth.Service, log *slog.Logger, version string) *Handler {
	return &Handler{
		Auth:   &AuthHandler{auth: authSvc, log: log},
		Users:  &UserHandler{store: users, log: log},
		Health: &HealthHandler{Version: version},
	}
}
