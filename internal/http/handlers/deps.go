package handlers

import (
	"time"

	"beanbrew/internal/repos"
	"beanbrew/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	OrderHandler     *OrderHandler
	CustomerHandler  *CustomerHandler
	ReportHandler    *ReportHandler
	AdminHandler     *AdminHandler
}

// NewDeps wires every service over one store. loc is the shop's time zone.
func NewDeps(store *repos.Store, loc *time.Location, auth *services.AuthService) *Deps {
	catalogSvc := services.NewCatalogService(store)
	invSvc := services.NewInventoryService(store)
	loyaltySvc := services.NewLoyaltyService(store)
	orderSvc := services.NewOrderService(store, invSvc, loyaltySvc)
	reportSvc := services.NewReportService(store, loc)

	return &Deps{
		Auth:             auth,
		AuthHandler:      &AuthHandler{Auth: auth},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc, Location: loc},
		CustomerHandler:  &CustomerHandler{Loyalty: loyaltySvc, Order: orderSvc},
		ReportHandler:    &ReportHandler{Reports: reportSvc},
		AdminHandler:     &AdminHandler{Auth: auth},
	}
}
