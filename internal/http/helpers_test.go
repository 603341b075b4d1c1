package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"beanbrew/internal/domain"
	"beanbrew/internal/http/handlers"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
	"beanbrew/internal/services"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testApp struct {
	app   *fiber.App
	store *repos.Store
	auth  *services.AuthService
}

// newTestApp serves the real router over a fresh database with one admin
// ("admin"/"adminpass") and one barista ("barista"/"brewpass").
func newTestApp(t *testing.T, opt handlers.AppOptions) *testApp {
	t.Helper()
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := repos.NewStore(db)
	auth := &services.AuthService{Users: store.Users, Cost: bcrypt.MinCost}
	ctx := context.Background()
	_, err = auth.CreateUser(ctx, "admin", "adminpass", "Admin User", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = auth.CreateUser(ctx, "barista", "brewpass", "Bea Barista", domain.RoleStaff)
	require.NoError(t, err)

	if opt.Views == nil {
		opt.Views = html.New("../../web/templates", ".html")
	}
	if opt.RequestsPerMinute == 0 {
		opt.RequestsPerMinute = 10000
	}
	if opt.LoginMax == 0 {
		opt.LoginMax = 1000
	}
	app := handlers.NewApp(handlers.NewDeps(store, time.UTC, auth), opt)
	return &testApp{app: app, store: store, auth: auth}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// do sends body as JSON (unless it is already a string) with the session
// cookie when sid is set.
func (ta *testApp) do(t *testing.T, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := ta.do(t, http.MethodPost, "/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sid := extractCookie(resp, "sid")
	require.NotEmpty(t, sid)
	return sid
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	Path   string         `json:"path"`
	Status int            `json:"status"`
	ReqID  string         `json:"req_id"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

// captureLogs returns every JSON log line written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	prev := applog.SetOutput(buf)
	defer applog.SetOutput(prev)

	fn()

	var out []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e logEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		out = append(out, e)
	}
	return out
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

// addProduct inserts a product directly and returns its id.
func (ta *testApp) addProduct(t *testing.T, name string, cat domain.Category, price string, stock int) int64 {
	t.Helper()
	id, err := ta.store.Products.Insert(context.Background(), domain.NewProduct{
		Name: name, Category: cat,
		Price: decimal.RequireFromString(price), Cost: decimal.Zero, InitialStock: stock,
	}, time.Now())
	require.NoError(t, err)
	return id
}
