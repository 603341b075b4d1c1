package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanbrew/internal/domain"
)

func TestParseLabels(t *testing.T) {
	c, err := domain.ParseCategory("  bakery ")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryBakery, c)

	_, err = domain.ParseCategory("Smoothies")
	assert.ErrorIs(t, err, domain.ErrValidation)

	m, err := domain.ParsePaymentMethod("MOBILE PAYMENT")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMobile, m)

	_, err = domain.ParsePaymentMethod("cheque")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.True(t, domain.CategoryOther.Valid())
	assert.False(t, domain.Category("coffee").Valid())
	assert.True(t, domain.PaymentDebit.Valid())
	assert.False(t, domain.PaymentMethod("").Valid())
}

func TestCustomizationsStorage(t *testing.T) {
	var empty domain.Customizations
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	c := domain.Customizations{{Key: "size", Value: "large"}, {Key: "milk", Value: "oat"}}
	v, err = c.Value()
	require.NoError(t, err)

	var back domain.Customizations
	require.NoError(t, back.Scan(v))
	assert.Equal(t, c, back)
	assert.Equal(t, "size: large, milk: oat", back.String())

	require.NoError(t, back.Scan([]byte("[]")))
	assert.Nil(t, back)
	require.NoError(t, back.Scan(nil))
	assert.Nil(t, back)
	assert.Error(t, back.Scan(42))
	assert.Error(t, back.Scan("{not json"))
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{domain.Invalid("quantity", "must be at least 1"), domain.ErrValidation},
		{&domain.NotFoundError{Entity: "order", ID: "abc"}, domain.ErrNotFound},
		{&domain.InsufficientStockError{ProductID: 1, Available: 0, Requested: 1}, domain.ErrInsufficientStock},
		{&domain.InsufficientPointsError{CustomerID: 1, Balance: 12, Requested: 20}, domain.ErrInsufficientPoints},
		{&domain.ConflictError{Entity: "customer", Field: "email"}, domain.ErrConflict},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.kind, tc.err.Error())
		assert.False(t, errors.Is(wrapped, domain.ErrConflict) && tc.kind != domain.ErrConflict)
	}

	var pe *domain.InsufficientPointsError
	require.ErrorAs(t, fmt.Errorf("x: %w", cases[3].err), &pe)
	assert.Equal(t, 12, pe.Balance)
	assert.Equal(t, "insufficient points for customer 1 (have 12, need 20)", pe.Error())
}

func TestLineSubtotal(t *testing.T) {
	l := domain.OrderLine{Quantity: 3, UnitPrice: decimal.RequireFromString("3.75")}
	assert.Equal(t, "11.25", l.Subtotal().StringFixed(2))
}

func TestUserIsAdmin(t *testing.T) {
	var nobody *domain.User
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&domain.User{Role: domain.RoleAdmin}).IsAdmin())
	assert.False(t, (&domain.User{Role: domain.RoleStaff}).IsAdmin())
}
