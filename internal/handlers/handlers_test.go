package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
	"github.com/upascal/fast-api-backend-template/internal/auth"
	"github.com/upascal/fast-api-backend-template/internal/handlers"
	"github.com/upascal/fast-api-backend-template/internal/middleware"
	"github.com/upascal/fast-api-backend-template/internal/models"
	"github.com/upascal/fast-api-backend-template/internal/store"
)

// fakeStore is an in-memory stand-in for store.Users with the same
// error contract.
type fakeStore struct {
	mu    sync.Mutex
	users []*models.User
}

func (f *fakeStore) Create(_ context.Context, in models.UserCreate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email := store.NormalizeEmail(in.Email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, apperr.ErrUserAlreadyExists
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		IsActive:       in.Active(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.users = append(f.users, user)

	return user, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email = store.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, in models.UserUpdate) (*models.User, error) {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if in.Email != nil {
		user.Email = store.NormalizeEmail(*in.Email)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hash
	}
	if in.FirstName != nil {
		user.FirstName = in.FirstName
	}
	if in.LastName != nil {
		user.LastName = in.LastName
	}
	user.UpdatedAt = time.Now().UTC()

	return user, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return apperr.ErrUserNotFound
}

func (f *fakeStore) List(_ context.Context, skip, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if skip >= len(f.users) {
		return []models.User{}, nil
	}

	end := skip + limit
	if end > len(f.users) {
		end = len(f.users)
	}

	out := make([]models.User, 0, end-skip)
	for _, u := range f.users[skip:end] {
		out = append(out, *u)
	}
	return out, nil
}

// api wires the handlers and guard against the fake store, mirroring
// the router in cmd/api.
type api struct {
	router http.Handler
	store  *fakeStore
	tokens *auth.TokenIssuer
}

func newTestAPI(t *testing.T) *api {
	t.Helper()

	tokens, err := auth.NewTokenIssuer("test-secret-key", "HS256")
	require.NoError(t, err)

	fake := &fakeStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(fake, tokens, 30*time.Minute)
	guard := middleware.NewAuth(tokens, fake)
	h := handlers.NewHandler(fake, svc, log, "1.0.0")

	r := chi.NewRouter()
	r.Get("/health", h.Health.Check)
	r.Post("/auth/token", h.Auth.Token)
	r.Post("/users", h.Users.Create)
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireUser)
		r.Get("/auth/me", h.Auth.Me)
		r.Get("/users/{id}", h.Users.Get)
		r.Put("/users/{id}", h.Users.Update)
		r.Delete("/users/{id}", h.Users.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireSuperuser)
		r.Get("/users", h.Users.List)
	})

	return &api{router: r, store: fake, tokens: tokens}
}

type envelope struct {
	Success bool            `json:"success"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *api) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *api) doJSON(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return a.do(t, method, path, token, r, "application/json")
}

func (a *api) createUser(t *testing.T, email, password string) models.UserResponse {
	t.Helper()

	rec := a.doJSON(t, "POST", "/users", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var user models.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &user))
	return user
}

func (a *api) login(t *testing.T, email, password string) string {
	t.Helper()

	form := "username=" + email + "&password=" + password
	rec := a.do(t, "POST", "/auth/token", "", strings.NewReader(form),
		"application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var token models.Token
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

// promote flips the superuser flag directly in the store.
func (a *api) promote(t *testing.T, id uuid.UUID) {
	t.Helper()

	user, err := a.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	user.IsSuperuser = true
}
