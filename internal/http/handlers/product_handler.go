package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"beanbrew/internal/domain"
	"beanbrew/internal/log"
	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type productRequest struct {
	Name         string          `json:"name" validate:"required,max=80"`
	Category     string          `json:"category" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	InitialStock int             `json:"initial_stock" validate:"gte=0"`
}

type priceRequest struct {
	Price *decimal.Decimal `json:"price" validate:"required"`
}

// List serves GET /api/v1/products?category=Coffee.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var filter *domain.Category
	if q := c.Query("category"); q != "" {
		cat, err := domain.ParseCategory(q)
		if err != nil {
			return err
		}
		filter = &cat
	}
	products, err := h.Catalog.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	cat, err := domain.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	id, err := h.Catalog.AddProduct(c.UserContext(), domain.NewProduct{
		Name: req.Name, Category: cat, Price: req.Price, Cost: req.Cost, InitialStock: req.InitialStock,
	})
	if err != nil {
		return err
	}
	log.Audit(c, "product.create", map[string]any{"product_id": id, "by": currentUser(c).ID})
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) UpdatePrice(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req priceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := h.Catalog.UpdatePrice(c.UserContext(), id, *req.Price); err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}
