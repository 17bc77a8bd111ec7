package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andino-pos/andino-pos/internal/shared"
)

type memoryRepo struct {
	users    map[string]*User
	sessions map[string]int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*User), sessions: make(map[string]int64)}
}

func (r *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memoryRepo) CreateSession(_ context.Context, id string, userID int64, _ time.Time, _, _ string) error {
	r.sessions[id] = userID
	return nil
}

func (r *memoryRepo) DeleteSession(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memoryRepo, *shared.SessionManager) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "andino_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")

	repo := newMemoryRepo()
	service := NewService(repo)
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	return NewHandler(logger, service, sessions, csrf), repo, sessions
}

func seedUser(t *testing.T, repo *memoryRepo, email, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{ID: 7, Name: "Andi", Email: email, PasswordHash: string(hash), IsActive: active}
	repo.users[email] = user
	return user
}

func TestHandleLoginSuccess(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	seedUser(t, repo, "andi@example.com", "secret-pass", true)

	body, _ := json.Marshal(map[string]string{"email": "andi@example.com", "password": "secret-pass"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))

	sess := &shared.Session{ID: "sess-1"}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.ID)
	require.Equal(t, "andi@example.com", resp.Email)
	require.Equal(t, "7", sess.User())
	require.Equal(t, int64(7), repo.sessions["sess-1"])
}

func TestHandleLoginWrongPassword(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	seedUser(t, repo, "andi@example.com", "secret-pass", true)

	body, _ := json.Marshal(map[string]string{"email": "andi@example.com", "password": "wrong-pass"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{ID: "sess-1"}))

	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleLoginInactiveUser(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	seedUser(t, repo, "andi@example.com", "secret-pass", false)

	body, _ := json.Marshal(map[string]string{"email": "andi@example.com", "password": "secret-pass"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{ID: "sess-1"}))

	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleLoginValidation(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": ""})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{ID: "sess-1"}))

	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogout(t *testing.T) {
	handler, repo, _ := newTestHandler(t)
	repo.sessions["sess-9"] = 7

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{ID: "sess-9"}))

	rec := httptest.NewRecorder()
	handler.handleLogout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, repo.sessions, "sess-9")
}
