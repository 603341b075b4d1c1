package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Every write transaction takes the database write lock at BEGIN
// (_txlock=immediate), so concurrent stock checks serialize.
const dsnParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("repos: parse time %q: %w", s, err)
	}
	return t, nil
}

// Queryer is the part of *sqlx.DB and *sqlx.Tx the repos use.
type Queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	full := dsn
	if !strings.Contains(dsn, "?") {
		full = dsn + "?" + dsnParams
	}
	db, err := sqlx.Open("sqlite", full)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(dsn, ":memory:") {
		// each connection would get its own private database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Products
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('Coffee','Tea','Bakery','Food','Merchandise','Other')),
  price TEXT NOT NULL,
  cost TEXT NOT NULL,
  stock INTEGER NOT NULL CHECK (stock >= 0),
  initial_stock INTEGER NOT NULL CHECK (initial_stock >= 0),
  created_at TEXT NOT NULL,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category_name ON products(category, name);

-- Inventory ledger (append-only)
CREATE TABLE IF NOT EXISTS inventory_log(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  delta INTEGER NOT NULL CHECK (delta <> 0),
  reason TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_log_product ON inventory_log(product_id);
CREATE TRIGGER IF NOT EXISTS inventory_log_no_update BEFORE UPDATE ON inventory_log
BEGIN SELECT RAISE(ABORT, 'inventory_log is append-only'); END;
CREATE TRIGGER IF NOT EXISTS inventory_log_no_delete BEFORE DELETE ON inventory_log
BEGIN SELECT RAISE(ABORT, 'inventory_log is append-only'); END;

-- Customers
CREATE TABLE IF NOT EXISTS customers(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
  joined_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email_nocase ON customers(LOWER(email));
CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name);

-- Orders (immutable once committed)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  created_at TEXT NOT NULL,
  total TEXT NOT NULL,
  payment_method TEXT NOT NULL CHECK (payment_method IN ('Cash','Credit Card','Debit Card','Mobile Payment','Other')),
  customer_id INTEGER REFERENCES customers(id)
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE TRIGGER IF NOT EXISTS orders_no_update BEFORE UPDATE ON orders
BEGIN SELECT RAISE(ABORT, 'orders are immutable'); END;

CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price TEXT NOT NULL,
  customizations TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE TRIGGER IF NOT EXISTS order_items_no_update BEFORE UPDATE ON order_items
BEGIN SELECT RAISE(ABORT, 'order items are immutable'); END;

-- Loyalty ledger (append-only)
CREATE TABLE IF NOT EXISTS loyalty_log(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL REFERENCES customers(id),
  delta INTEGER NOT NULL CHECK (delta <> 0),
  reason TEXT NOT NULL,
  order_id TEXT REFERENCES orders(id),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loyalty_log_customer ON loyalty_log(customer_id);
CREATE TRIGGER IF NOT EXISTS loyalty_log_no_update BEFORE UPDATE ON loyalty_log
BEGIN SELECT RAISE(ABORT, 'loyalty_log is append-only'); END;
CREATE TRIGGER IF NOT EXISTS loyalty_log_no_delete BEFORE DELETE ON loyalty_log
BEGIN SELECT RAISE(ABORT, 'loyalty_log is append-only'); END;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('ADMIN','STAFF')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(LOWER(username));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

type repoSet struct {
	Products  *ProductRepo
	Inventory *InventoryRepo
	Orders    *OrderRepo
	Customers *CustomerRepo
}

func newRepoSet(q Queryer) repoSet {
	return repoSet{
		Products:  NewProductRepo(q),
		Inventory: NewInventoryRepo(q),
		Orders:    NewOrderRepo(q),
		Customers: NewCustomerRepo(q),
	}
}

// Store is the handle every service receives. Its repos run outside any
// transaction; WithTx hands out the same repos bound to one.
type Store struct {
	DB         *sqlx.DB
	Categories *CategoryRepo
	Users      *UserRepo
	repoSet
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		DB:         db,
		Categories: NewCategoryRepo(db),
		Users:      NewUserRepo(db),
		repoSet:    newRepoSet(db),
	}
}

// Tx exposes the repos bound to one open transaction.
type Tx struct {
	tx *sqlx.Tx
	repoSet
}

// WithTx runs fn inside a single transaction. Any error from fn rolls back
// every write fn made.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repos: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{tx: tx, repoSet: newRepoSet(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repos: commit tx: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.DB.Close() }
