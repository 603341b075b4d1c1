package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"beanbrew/internal/domain"
)

type CustomerRepo struct{ q Queryer }

func NewCustomerRepo(q Queryer) *CustomerRepo { return &CustomerRepo{q: q} }

const customerCols = `id, name, email, phone, points, joined_at`

type customerRow struct {
	ID       int64          `db:"id"`
	Name     string         `db:"name"`
	Email    sql.NullString `db:"email"`
	Phone    sql.NullString `db:"phone"`
	Points   int            `db:"points"`
	JoinedAt string         `db:"joined_at"`
}

func (row customerRow) customer() (domain.Customer, error) {
	at, err := parseTime(row.JoinedAt)
	return domain.Customer{
		ID: row.ID, Name: row.Name, Email: row.Email.String, Phone: row.Phone.String,
		Points: row.Points, JoinedAt: at,
	}, err
}

type loyaltyLogRow struct {
	ID         int64          `db:"id"`
	CustomerID int64          `db:"customer_id"`
	Delta      int            `db:"delta"`
	Reason     string         `db:"reason"`
	OrderID    sql.NullString `db:"order_id"`
	CreatedAt  string         `db:"created_at"`
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Insert stores a customer with a zero balance. A duplicate email
// (case-insensitive) is a ConflictError.
func (r *CustomerRepo) Insert(ctx context.Context, c domain.NewCustomer, now time.Time) (int64, error) {
	var id int64
	err := r.q.QueryRowxContext(ctx, `
  INSERT INTO customers(name, email, phone, points, joined_at)
  VALUES (?, ?, ?, 0, ?)
  RETURNING id
`, c.Name, nullable(c.Email), nullable(c.Phone), formatTime(now)).Scan(&id)
	if isUniqueViolation(err) {
		return 0, &domain.ConflictError{Entity: "customer", Field: "email"}
	}
	return id, err
}

func (r *CustomerRepo) Get(ctx context.Context, id int64) (domain.Customer, error) {
	var row customerRow
	err := r.q.GetContext(ctx, &row, `SELECT `+customerCols+` FROM customers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, &domain.NotFoundError{Entity: "customer", ID: id}
	}
	if err != nil {
		return domain.Customer{}, err
	}
	return row.customer()
}

// Exists reports whether the customer id is known.
func (r *CustomerRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.q.GetContext(ctx, &n, `SELECT COUNT(*) FROM customers WHERE id = ?`, id)
	return n > 0, err
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search matches term case-insensitively as a substring of name, email or
// phone. An empty term lists everyone.
func (r *CustomerRepo) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	where, args := `1 = 1`, []any{}
	if term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		where = `LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(email,'')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(phone,'')) LIKE ? ESCAPE '\'`
		args = append(args, like, like, like)
	}
	var rows []customerRow
	err := r.q.SelectContext(ctx, &rows, `
  SELECT `+customerCols+`
  FROM customers
  WHERE `+where+`
  ORDER BY name, id`, args...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		c, err := row.customer()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// AddPoints applies delta to the balance unless the result would be
// negative, and returns the new balance.
func (r *CustomerRepo) AddPoints(ctx context.Context, id int64, delta int) (int, error) {
	var points int
	err := r.q.QueryRowxContext(ctx, `
  UPDATE customers
  SET points = points + ?
  WHERE id = ? AND points + ? >= 0
  RETURNING points
`, delta, id, delta).Scan(&points)
	if err == nil {
		return points, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	var cur int
	err = r.q.GetContext(ctx, &cur, `SELECT points FROM customers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: "customer", ID: id}
	}
	if err != nil {
		return 0, err
	}
	return cur, &domain.InsufficientPointsError{CustomerID: id, Balance: cur, Requested: -delta}
}

// AppendLog records one balance movement.
func (r *CustomerRepo) AppendLog(ctx context.Context, e domain.LoyaltyLogEntry) (domain.LoyaltyLogEntry, error) {
	err := r.q.QueryRowxContext(ctx, `
  INSERT INTO loyalty_log(customer_id, delta, reason, order_id, created_at)
  VALUES (?, ?, ?, ?, ?)
  RETURNING id
`, e.CustomerID, e.Delta, e.Reason, nullable(e.OrderID), formatTime(e.CreatedAt)).Scan(&e.ID)
	return e, err
}

// History returns a customer's balance movements newest first.
func (r *CustomerRepo) History(ctx context.Context, customerID int64) ([]domain.LoyaltyLogEntry, error) {
	var rows []loyaltyLogRow
	err := r.q.SelectContext(ctx, &rows, `
  SELECT id, customer_id, delta, reason, order_id, created_at
  FROM loyalty_log
  WHERE customer_id = ?
  ORDER BY id DESC
`, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LoyaltyLogEntry, 0, len(rows))
	for _, row := range rows {
		at, err := parseTime(row.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.LoyaltyLogEntry{
			ID: row.ID, CustomerID: row.CustomerID, Delta: row.Delta,
			Reason: row.Reason, OrderID: row.OrderID.String, CreatedAt: at,
		})
	}
	return out, nil
}

// Sum is the net of every logged movement for the customer.
func (r *CustomerRepo) Sum(ctx context.Context, customerID int64) (int, error) {
	var sum int
	err := r.q.GetContext(ctx, &sum,
		`SELECT COALESCE(SUM(delta), 0) FROM loyalty_log WHERE customer_id = ?`, customerID)
	return sum, err
}
