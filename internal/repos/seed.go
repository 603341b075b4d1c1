package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
)

type SeedOptions struct {
	Demo          bool
	AdminPassword string
}

// Seed ensures the admin account exists and, with Demo set, loads the demo
// menu and customers into an empty database. Safe to run on every startup.
func Seed(ctx context.Context, db *sqlx.DB, opt SeedOptions) error {
	if opt.AdminPassword != "" {
		if err := seedAdmin(ctx, db, opt.AdminPassword); err != nil {
			return err
		}
	}
	if opt.Demo {
		return seedIfEmpty(ctx, db)
	}
	return nil
}

func seedAdmin(ctx context.Context, db *sqlx.DB, password string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("repos: hash admin password: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO users(id,username,name,password_hash,role)
		VALUES(?,?,?,?,?)
		ON CONFLICT DO NOTHING
	`, uuid.NewString(), "admin", "Admin User", string(h), domain.RoleAdmin)
	return err
}

type demoProduct struct {
	name        string
	category    domain.Category
	price, cost string
	stock       int
}

var demoMenu = []demoProduct{
	{"Espresso", domain.CategoryCoffee, "2.50", "0.70", 1000},
	{"Americano", domain.CategoryCoffee, "3.00", "0.80", 1000},
	{"Cappuccino", domain.CategoryCoffee, "3.50", "1.10", 1000},
	{"Latte", domain.CategoryCoffee, "3.75", "1.20", 1000},
	{"Mocha", domain.CategoryCoffee, "4.25", "1.50", 1000},
	{"Cold Brew", domain.CategoryCoffee, "4.00", "1.30", 500},

	{"Green Tea", domain.CategoryTea, "2.75", "0.60", 500},
	{"English Breakfast", domain.CategoryTea, "2.75", "0.60", 500},
	{"Herbal Tea", domain.CategoryTea, "2.75", "0.60", 500},

	{"Croissant", domain.CategoryBakery, "2.50", "1.00", 50},
	{"Chocolate Muffin", domain.CategoryBakery, "3.25", "1.20", 40},
	{"Bagel with Cream Cheese", domain.CategoryBakery, "3.50", "1.40", 35},
	{"Avocado Toast", domain.CategoryFood, "6.50", "2.50", 20},
	{"Grilled Cheese Sandwich", domain.CategoryFood, "5.75", "2.20", 25},

	{"Bean Brew Mug", domain.CategoryMerchandise, "12.00", "5.00", 30},
	{"Whole Bean Coffee 12oz", domain.CategoryMerchandise, "14.50", "6.00", 40},
}

var demoCustomers = []struct {
	c      domain.NewCustomer
	points int
}{
	{domain.NewCustomer{Name: "John Smith", Email: "john@example.com", Phone: "555-1234"}, 120},
	{domain.NewCustomer{Name: "Sarah Johnson", Email: "sarah@example.com", Phone: "555-5678"}, 85},
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repos: parse money %q: %w", s, err)
	}
	return d, nil
}

func seedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Info(nil, "seed.demo", map[string]any{"products": len(demoMenu), "customers": len(demoCustomers)})

	s := NewStore(db)
	now := time.Now()
	return s.WithTx(ctx, func(tx *Tx) error {
		for _, d := range demoMenu {
			p := domain.NewProduct{Name: d.name, Category: d.category, InitialStock: d.stock}
			var err error
			if p.Price, err = parseMoney(d.price); err != nil {
				return err
			}
			if p.Cost, err = parseMoney(d.cost); err != nil {
				return err
			}
			if _, err := tx.Products.Insert(ctx, p, now); err != nil {
				return fmt.Errorf("repos: seed product %s: %w", d.name, err)
			}
		}
		// Opening balances go through the loyalty log so points equal its sum.
		for _, dc := range demoCustomers {
			id, err := tx.Customers.Insert(ctx, dc.c, now)
			if err != nil {
				return fmt.Errorf("repos: seed customer %s: %w", dc.c.Name, err)
			}
			if _, err := tx.Customers.AddPoints(ctx, id, dc.points); err != nil {
				return err
			}
			if _, err := tx.Customers.AppendLog(ctx, domain.LoyaltyLogEntry{
				CustomerID: id, Delta: dc.points, Reason: domain.ReasonOpening, CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
