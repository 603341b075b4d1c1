package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanbrew/internal/domain"
)

func TestAddCustomer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	id, err := e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: " John Smith ", Email: "John@Example.com", Phone: "555-1234"})
	require.NoError(t, err)
	c, err := e.loyalty.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", c.Name)
	assert.Equal(t, "555-1234", c.Phone)
	assert.Equal(t, 0, c.Points)
	assert.False(t, c.JoinedAt.IsZero())

	_, err = e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "Johnny", Email: "john@example.COM"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "", Email: "x@example.com"})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "X", Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "X", Phone: "call me"})
	require.ErrorIs(t, err, domain.ErrValidation)

	// customers without email never collide
	_, err = e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "Walk-in A"})
	require.NoError(t, err)
	_, err = e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "Walk-in B"})
	require.NoError(t, err)

	_, err = e.loyalty.GetCustomer(ctx, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindCustomers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.customer(t, "Sarah Johnson", "sarah@example.com", 0)
	e.customer(t, "John Smith", "john@example.com", 0)
	_, err := e.loyalty.AddCustomer(ctx, domain.NewCustomer{Name: "Ann 100%", Phone: "555-9999"})
	require.NoError(t, err)

	names := func(term string) []string {
		cs, err := e.loyalty.FindCustomers(ctx, term)
		require.NoError(t, err)
		out := []string{}
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	assert.Equal(t, []string{"John Smith", "Sarah Johnson"}, names("JOHN"))
	assert.Equal(t, []string{"Sarah Johnson"}, names("sarah@"))
	assert.Equal(t, []string{"Ann 100%"}, names("555-99"))
	assert.Equal(t, []string{"Ann 100%"}, names("0%"))
	assert.Equal(t, []string{}, names("zzz"))
	assert.Equal(t, []string{"Ann 100%", "John Smith", "Sarah Johnson"}, names("  "))
}

func TestCreditAndRedeemPoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Sarah Johnson", "", 0)

	bal, err := e.loyalty.CreditPoints(ctx, c, 12, "promo")
	require.NoError(t, err)
	assert.Equal(t, 12, bal)

	_, err = e.loyalty.CreditPoints(ctx, c, -1, "promo")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.loyalty.CreditPoints(ctx, 999, 5, "promo")
	require.ErrorIs(t, err, domain.ErrNotFound)

	bal, err = e.loyalty.CreditPoints(ctx, c, 0, "promo")
	require.NoError(t, err)
	assert.Equal(t, 12, bal)

	_, err = e.loyalty.RedeemPoints(ctx, c, 20)
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)
	var ipe *domain.InsufficientPointsError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, 12, ipe.Balance)

	bal, err = e.loyalty.RedeemPoints(ctx, c, 12)
	require.NoError(t, err)
	assert.Equal(t, 0, bal)

	_, err = e.loyalty.RedeemPoints(ctx, c, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.loyalty.RedeemPoints(ctx, 999, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)

	hist, err := e.loyalty.PointsHistory(ctx, c)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, -12, hist[0].Delta)
	assert.Equal(t, domain.ReasonRedeem, hist[0].Reason)

	sum, err := e.store.Customers.Sum(ctx, c)
	require.NoError(t, err)
	cust, err := e.loyalty.GetCustomer(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, cust.Points, sum)
}
