package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemActor is recorded on ledger entries written by the order engine.
const SystemActor = "system"

// Ledger reasons used by the core.
const (
	ReasonSale     = "sale"
	ReasonPurchase = "purchase"
	ReasonRedeem   = "redeem"
	ReasonOpening  = "opening balance"
)

type Product struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Category     Category        `db:"category" json:"category"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Cost         decimal.Decimal `db:"cost" json:"cost"`
	Stock        int             `db:"stock" json:"stock"`
	InitialStock int             `db:"initial_stock" json:"initial_stock"`
}

type NewProduct struct {
	Name         string
	Category     Category
	Price        decimal.Decimal
	Cost         decimal.Decimal
	InitialStock int
}

type CategorySummary struct {
	Category     Category `db:"category" json:"category"`
	ProductCount int      `db:"product_count" json:"product_count"`
}

// InventoryLogEntry is one immutable stock movement.
type InventoryLogEntry struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StockDrift reports a product whose cached stock disagrees with its ledger.
type StockDrift struct {
	ProductID    int64 `db:"product_id" json:"product_id"`
	Stock        int   `db:"stock" json:"stock"`
	InitialStock int   `db:"initial_stock" json:"initial_stock"`
	LedgerSum    int   `db:"ledger_sum" json:"ledger_sum"`
}

type Order struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
}

type OrderLine struct {
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Customizations Customizations  `json:"customizations,omitempty"`
}

// Subtotal is the line's price times quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineRequest is one requested line of a new order. The price is captured
// by the order engine, never supplied by the caller.
type LineRequest struct {
	ProductID      int64          `json:"product_id"`
	Quantity       int            `json:"quantity"`
	Customizations Customizations `json:"customizations,omitempty"`
}

type OrderRequest struct {
	Lines         []LineRequest
	PaymentMethod PaymentMethod
	CustomerID    *int64
}

type Receipt struct {
	OrderID       string           `json:"order_id"`
	CreatedAt     time.Time        `json:"created_at"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Customer      *ReceiptCustomer `json:"customer,omitempty"`
	Lines         []ReceiptLine    `json:"lines"`
}

type ReceiptCustomer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type ReceiptLine struct {
	ProductID      int64           `json:"product_id"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Customizations Customizations  `json:"customizations,omitempty"`
}

type Customer struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Points   int       `json:"points"`
	JoinedAt time.Time `json:"joined_at"`
}

type NewCustomer struct {
	Name  string
	Email string
	Phone string
}

type LoyaltyLogEntry struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason"`
	OrderID    string    `json:"order_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DailyReport aggregates the orders committed on one local calendar day.
type DailyReport struct {
	Date        string          `json:"date"`
	OrderCount  int             `json:"order_count"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	Categories  []CategorySales `json:"categories"`
	TopProducts []ProductSales  `json:"top_products"`
}

type CategorySales struct {
	Category Category        `json:"category"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}
