package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
	"github.com/upascal/fast-api-backend-template/internal/middleware"
	"github.com/upascal/fast-api-backend-template/internal/models"
	"github.com/upascal/fast-api-backend-template/internal/utils"
)

type UserHandler struct {
	store UserStore
	log   *slog.Logger
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.UserCreate
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	user, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.logServerError(err)
		utils.WriteError(w, err)
		return
	}

	utils.Respond(w, http.StatusCreated, "User created successfully", user.Response())
}

// List handles GET /users. Reached only through the superuser guard.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	users, err := h.store.List(r.Context(), skip, limit)
	if err != nil {
		h.logServerError(err)
		utils.WriteError(w, err)
		return
	}

	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].Response())
	}

	utils.Respond(w, http.StatusOK, "", out)
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeOwner(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	user, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logServerError(err)
		utils.WriteError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "", user.Response())
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeOwner(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var in models.UserUpdate
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := in.Validate(); err != nil {
		utils.WriteError(w, err)
		return
	}

	user, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.logServerError(err)
		utils.WriteError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "User updated successfully", user.Response())
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeOwner(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logServerError(err)
		utils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeOwner parses the {id} path parameter and enforces the
// self-or-superuser rule. The ownership check runs before any
// existence check, so outsiders get 403 rather than 404.
func (h *UserHandler) authorizeOwner(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id", apperr.ErrUnprocessable)
	}

	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperr.ErrUnauthorized
	}

	if current.ID != id && !current.IsSuperuser {
		return uuid.Nil, apperr.ErrForbidden
	}

	return id, nil
}

func (h *UserHandler) logServerError(err error) {
	switch {
	case errors.Is(err, apperr.ErrUserNotFound),
		errors.Is(err, apperr.ErrUserAlreadyExists):
	default:
		h.log.Error("user store error", slog.Any("error", err))
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
