package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "beanbrew/internal/log"
)

type AppOptions struct {
	Views fiber.Views
	// LoginMax caps login attempts per client per window; zero means 5.
	LoginMax    int
	LoginWindow time.Duration
	// RequestsPerMinute caps all other traffic per client; zero means 600.
	RequestsPerMinute int
}

// AccessLog writes one access entry per request once it has been served.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler set the final status first
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		applog.Access(c, time.Since(start))
		return nil
	}
}

// NewApp builds the fiber app with middleware and every route.
func NewApp(d *Deps, opt AppOptions) *fiber.App {
	if opt.LoginMax == 0 {
		opt.LoginMax = 5
	}
	if opt.LoginWindow == 0 {
		opt.LoginWindow = 10 * time.Minute
	}
	if opt.RequestsPerMinute == 0 {
		opt.RequestsPerMinute = 600
	}

	app := fiber.New(fiber.Config{
		Views:        opt.Views,
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	app.Use(requestid.New())
	app.Use(AccessLog())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        opt.RequestsPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// Auth routes (login throttled)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        opt.LoginMax,
		Expiration: opt.LoginWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "too many attempts, try again later")
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	staff := RequireUser(d.Auth)
	admin := RequireAdmin(d.Auth)

	// Printable pages
	app.Get("/receipt/:id", staff, d.OrderHandler.ReceiptPage)
	app.Get("/reports/daily", admin, d.ReportHandler.DailyPage)

	api := app.Group("/api/v1")

	api.Get("/categories", staff, d.CategoryHandler.List)
	api.Get("/products", staff, d.ProductHandler.List)
	api.Get("/products/:id", staff, d.ProductHandler.Get)
	api.Post("/products", admin, d.ProductHandler.Create)
	api.Post("/products/:id/price", admin, d.ProductHandler.UpdatePrice)
	api.Post("/products/:id/stock", admin, d.InventoryHandler.Adjust)
	api.Get("/products/:id/ledger", admin, d.InventoryHandler.Ledger)
	api.Get("/inventory/reconcile", admin, d.InventoryHandler.Reconcile)

	api.Post("/orders", staff, d.OrderHandler.Create)
	api.Get("/orders", staff, d.OrderHandler.List)
	api.Get("/orders/:id/receipt", staff, d.OrderHandler.Receipt)

	api.Post("/customers", staff, d.CustomerHandler.Create)
	api.Get("/customers", staff, d.CustomerHandler.Search)
	api.Get("/customers/:id", staff, d.CustomerHandler.Get)
	api.Get("/customers/:id/points", staff, d.CustomerHandler.Points)
	api.Get("/customers/:id/orders", staff, d.CustomerHandler.Orders)
	api.Post("/customers/:id/redeem", staff, d.CustomerHandler.Redeem)
	api.Post("/customers/:id/credit", admin, d.CustomerHandler.Credit)

	api.Get("/reports/daily", admin, d.ReportHandler.Daily)

	api.Post("/users", admin, d.AdminHandler.CreateUser)
	api.Delete("/users/:id", admin, d.AdminHandler.DeleteUser)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "route not found")
	})
	return app
}
