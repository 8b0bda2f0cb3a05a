package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/reports"
)

// ReportsDashboard returns the stock valuation summary, low-stock list and
// top sellers.
func ReportsDashboard(c *fiber.Ctx) error {
	summary, err := reports.Dashboard(database.GetDB())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(summary)
}

// ReportsSales returns date-ranged sales aggregates grouped by day,
// category or product (manager only).
func ReportsSales(c *fiber.Ctx) error {
	now := time.Now()
	from, err := parseDateQuery(c.Query("from", ""), now.AddDate(0, -1, 0))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from date, want YYYY-MM-DD"})
	}
	to, err := parseDateQuery(c.Query("to", ""), now)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to date, want YYYY-MM-DD"})
	}

	db := database.GetDB()
	group := c.Query("group", "day")

	var rows []reports.SalesRow
	switch group {
	case "day":
		rows, err = reports.SalesByDay(db, from, to)
	case "category":
		rows, err = reports.SalesByCategory(db, from, to)
	case "product":
		rows, err = reports.SalesByProduct(db, from, to)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "group must be day, category or product"})
	}
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"rows":  rows,
	})
}

func parseDateQuery(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}
