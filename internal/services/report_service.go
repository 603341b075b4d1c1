package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"beanbrew/internal/domain"
	"beanbrew/internal/repos"
)

const topProductsLimit = 10

type ReportService struct {
	Store *repos.Store
	// Location decides where a calendar day starts; nil is time.Local.
	Location *time.Location
}

func NewReportService(store *repos.Store, loc *time.Location) *ReportService {
	return &ReportService{Store: store, Location: loc}
}

func (s *ReportService) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// DayBounds returns [start, end) of the local calendar day containing t.
func (s *ReportService) DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(s.loc()).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc())
	return start, start.AddDate(0, 0, 1)
}

// DailySalesReport summarizes the orders committed on the local calendar
// day of date. Every figure comes from one read transaction.
func (s *ReportService) DailySalesReport(ctx context.Context, date time.Time) (domain.DailyReport, error) {
	start, end := s.DayBounds(date)
	rep := domain.DailyReport{
		Date:        start.Format(time.DateOnly),
		TotalSales:  decimal.Zero,
		Categories:  []domain.CategorySales{},
		TopProducts: []domain.ProductSales{},
	}

	var (
		orders []domain.Order
		lines  []repos.SaleLineRow
	)
	err := s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		if orders, err = tx.Orders.Between(ctx, start, end); err != nil {
			return err
		}
		lines, err = tx.Orders.SaleLinesBetween(ctx, start, end)
		return err
	})
	if err != nil {
		return domain.DailyReport{}, err
	}

	rep.OrderCount = len(orders)
	for _, o := range orders {
		rep.TotalSales = rep.TotalSales.Add(o.Total)
	}

	byCat := map[domain.Category]*domain.CategorySales{}
	byProduct := map[int64]*domain.ProductSales{}
	for _, l := range lines {
		revenue := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))

		c, ok := byCat[l.Category]
		if !ok {
			c = &domain.CategorySales{Category: l.Category, Revenue: decimal.Zero}
			byCat[l.Category] = c
		}
		c.Quantity += l.Quantity
		c.Revenue = c.Revenue.Add(revenue)

		p, ok := byProduct[l.ProductID]
		if !ok {
			p = &domain.ProductSales{ProductID: l.ProductID, Name: l.Name, Revenue: decimal.Zero}
			byProduct[l.ProductID] = p
		}
		p.Quantity += l.Quantity
		p.Revenue = p.Revenue.Add(revenue)
	}

	for _, c := range byCat {
		rep.Categories = append(rep.Categories, *c)
	}
	sort.Slice(rep.Categories, func(i, j int) bool {
		a, b := rep.Categories[i], rep.Categories[j]
		if cmp := a.Revenue.Cmp(b.Revenue); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})

	for _, p := range byProduct {
		rep.TopProducts = append(rep.TopProducts, *p)
	}
	sort.Slice(rep.TopProducts, func(i, j int) bool {
		a, b := rep.TopProducts[i], rep.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(rep.TopProducts) > topProductsLimit {
		rep.TopProducts = rep.TopProducts[:topProductsLimit]
	}
	return rep, nil
}
