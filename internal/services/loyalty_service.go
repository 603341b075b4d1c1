package services

import (
	"context"
	"strings"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
	"beanbrew/internal/validate"
)

type LoyaltyService struct {
	Store *repos.Store
	Now   Clock
}

func NewLoyaltyService(store *repos.Store) *LoyaltyService {
	return &LoyaltyService{Store: store}
}

func (s *LoyaltyService) AddCustomer(ctx context.Context, c domain.NewCustomer) (int64, error) {
	name, ok := validate.Name(c.Name)
	if !ok {
		return 0, domain.Invalid("name", "required, at most 80 characters")
	}
	c.Name = name
	if strings.TrimSpace(c.Email) != "" {
		if c.Email, ok = validate.Email(c.Email); !ok {
			return 0, domain.Invalid("email", "malformed email address")
		}
	} else {
		c.Email = ""
	}
	if strings.TrimSpace(c.Phone) != "" {
		if c.Phone, ok = validate.Phone(c.Phone); !ok {
			return 0, domain.Invalid("phone", "malformed phone number")
		}
	} else {
		c.Phone = ""
	}

	id, err := s.Store.Customers.Insert(ctx, c, s.Now.now())
	if err != nil {
		return 0, err
	}
	applog.Audit(nil, "loyalty.add_customer", map[string]any{"customer_id": id})
	return id, nil
}

func (s *LoyaltyService) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	return s.Store.Customers.Get(ctx, id)
}

// FindCustomers matches term against name, email and phone. A blank term
// returns every customer.
func (s *LoyaltyService) FindCustomers(ctx context.Context, term string) ([]domain.Customer, error) {
	return s.Store.Customers.Search(ctx, validate.Q(term))
}

// CreditPoints adds amount to the balance and returns the new balance.
func (s *LoyaltyService) CreditPoints(ctx context.Context, customerID int64, amount int, reason string) (int, error) {
	var balance int
	err := s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		balance, err = s.CreditPointsTx(ctx, tx, customerID, amount, reason, "")
		return err
	})
	if err != nil {
		return 0, err
	}
	applog.Audit(nil, "loyalty.credit", map[string]any{
		"customer_id": customerID, "amount": amount, "reason": strings.TrimSpace(reason), "balance": balance,
	})
	return balance, nil
}

// CreditPointsTx is CreditPoints inside the caller's transaction. orderID
// links the ledger entry to a sale and may be empty. A zero amount only
// checks that the customer exists.
func (s *LoyaltyService) CreditPointsTx(ctx context.Context, tx *repos.Tx, customerID int64, amount int, reason, orderID string) (int, error) {
	reason = strings.TrimSpace(reason)
	if amount < 0 {
		return 0, domain.Invalid("amount", "must not be negative")
	}
	if reason == "" {
		return 0, domain.Invalid("reason", "required")
	}
	if amount == 0 {
		c, err := tx.Customers.Get(ctx, customerID)
		return c.Points, err
	}
	return s.applyPoints(ctx, tx, customerID, amount, reason, orderID)
}

// RedeemPoints debits amount and returns the new balance. Redeeming more
// than the balance is an InsufficientPointsError and changes nothing.
func (s *LoyaltyService) RedeemPoints(ctx context.Context, customerID int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, domain.Invalid("amount", "must be positive")
	}
	var balance int
	err := s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		balance, err = s.applyPoints(ctx, tx, customerID, -amount, domain.ReasonRedeem, "")
		return err
	})
	if err != nil {
		return 0, err
	}
	applog.Audit(nil, "loyalty.redeem", map[string]any{
		"customer_id": customerID, "amount": amount, "balance": balance,
	})
	return balance, nil
}

func (s *LoyaltyService) applyPoints(ctx context.Context, tx *repos.Tx, customerID int64, delta int, reason, orderID string) (int, error) {
	balance, err := tx.Customers.AddPoints(ctx, customerID, delta)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Customers.AppendLog(ctx, domain.LoyaltyLogEntry{
		CustomerID: customerID, Delta: delta, Reason: reason, OrderID: orderID, CreatedAt: s.Now.now(),
	}); err != nil {
		return 0, err
	}
	return balance, nil
}

// PointsHistory lists the customer's balance movements newest first.
func (s *LoyaltyService) PointsHistory(ctx context.Context, customerID int64) ([]domain.LoyaltyLogEntry, error) {
	if _, err := s.Store.Customers.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.Store.Customers.History(ctx, customerID)
}
