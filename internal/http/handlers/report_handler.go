package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/domain"
	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

type ReportHandler struct {
	Reports *services.ReportService
}

// day reads ?date=YYYY-MM-DD in the shop's zone; absent means today.
func (h *ReportHandler) day(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	loc := h.Reports.Location
	if loc == nil {
		loc = time.Local
	}
	d, ok := validate.Date(raw, loc)
	if !ok {
		return time.Time{}, domain.Invalid("date", "expected YYYY-MM-DD")
	}
	return d, nil
}

func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	d, err := h.day(c)
	if err != nil {
		return err
	}
	rep, err := h.Reports.DailySalesReport(c.UserContext(), d)
	if err != nil {
		return err
	}
	return c.JSON(rep)
}

// DailyPage renders the printable daily report.
func (h *ReportHandler) DailyPage(c *fiber.Ctx) error {
	d, err := h.day(c)
	if err != nil {
		return renderError(c, err)
	}
	rep, err := h.Reports.DailySalesReport(c.UserContext(), d)
	if err != nil {
		return renderError(c, err)
	}
	return render(c, "daily_report", fiber.Map{"Rep": rep})
}
