package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"beanbrew/internal/http/handlers"
	"beanbrew/internal/repos"
)

// seeded passwords are stored as bcrypt hashes only
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, repos.Seed(context.Background(), db, repos.SeedOptions{AdminPassword: "Passw0rd!"}))

	var hashes []string
	require.NoError(t, db.Select(&hashes, `SELECT password_hash FROM users`))
	require.Len(t, hashes, 1)
	for _, h := range hashes {
		assert.NotContains(t, h, "Passw0rd!")
		assert.True(t, strings.HasPrefix(h, "$2"), "unexpected hash format: %s", h)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")))
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	ta := newTestApp(t, handlers.AppOptions{LoginMax: 3, LoginWindow: time.Minute})

	bad := ta.do(t, http.MethodPost, "/login", map[string]string{"username": "barista", "password": "wrongpass"}, "")
	require.Equal(t, http.StatusUnauthorized, bad.StatusCode)
	body := decode[apiError](t, bad)
	assert.Equal(t, "unauthorized", body.Code)
	assert.Equal(t, "invalid username or password", body.Error)

	unknown := ta.do(t, http.MethodPost, "/login", map[string]string{"username": "ghost", "password": "brewpass"}, "")
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)

	ok := ta.do(t, http.MethodPost, "/login", map[string]string{"username": "barista", "password": "brewpass"}, "")
	require.Equal(t, http.StatusOK, ok.StatusCode)
	user := decode[map[string]string](t, ok)
	assert.Equal(t, "STAFF", user["role"])
	assert.NotContains(t, user, "password_hash")

	// fourth attempt inside the window is throttled even with good credentials
	again := ta.do(t, http.MethodPost, "/login", map[string]string{"username": "barista", "password": "brewpass"}, "")
	require.Equal(t, http.StatusTooManyRequests, again.StatusCode)
	assert.Equal(t, "rate_limited", decode[apiError](t, again).Code)
}

func TestLoginSessionLifecycle(t *testing.T) {
	ta := newTestApp(t, handlers.AppOptions{})

	resp := ta.do(t, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	sid := ta.login(t, "BARISTA", "brewpass")
	resp = ta.do(t, http.MethodGet, "/api/v1/products", nil, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.do(t, http.MethodPost, "/logout", nil, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.do(t, http.MethodGet, "/api/v1/products", nil, sid)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
