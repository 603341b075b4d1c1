package handlers_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanbrew/internal/domain"
	"beanbrew/internal/http/handlers"
)

func TestErrorHandlerMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.Invalid("quantity", "must be at least 1"), http.StatusBadRequest, "validation"},
		{"not found", &domain.NotFoundError{Entity: "product", ID: 9}, http.StatusNotFound, "not_found"},
		{"stock", &domain.InsufficientStockError{ProductID: 1, Available: 0, Requested: 1}, http.StatusConflict, "insufficient_stock"},
		{"points", &domain.InsufficientPointsError{CustomerID: 1, Balance: 5, Requested: 20}, http.StatusConflict, "insufficient_points"},
		{"conflict", &domain.ConflictError{Entity: "customer", Field: "email"}, http.StatusConflict, "conflict"},
		{"wrapped", fmt.Errorf("placing order: %w", &domain.NotFoundError{Entity: "customer", ID: 3}), http.StatusNotFound, "not_found"},
		{"fiber 405", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
			app.Get("/x", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
			body := decode[apiError](t, resp)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

// internal failures never reach the client
func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("sql: database is locked at /var/lib/pos.db")
	})

	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
		require.NoError(t, err)
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "database is locked")
	assert.Contains(t, string(raw), `"code":"internal"`)

	e, ok := findLog(entries, "server.error")
	require.True(t, ok)
	assert.Equal(t, "error", e.Level)
	assert.Contains(t, e.Err, "database is locked")
}
