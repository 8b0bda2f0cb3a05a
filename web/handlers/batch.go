package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/batchimport"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/web/middleware"
)

// Uploads above this size are rejected outright.
const maxUploadSize = 5 * 1024 * 1024

// BatchPreview parses an uploaded spreadsheet and returns the change plan
// without writing anything (manager only).
func BatchPreview(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("spreadsheet_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no file uploaded"})
	}
	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file exceeds 5MB limit"})
	}
	mode := batchimport.UpdateMode(c.FormValue("update_mode", string(batchimport.ModeAddStock)))
	if !mode.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown update mode"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return renderError(c, err)
	}
	defer file.Close()

	rows, err := batchimport.Parse(file, fileHeader.Filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	plan, err := batchimport.Preview(database.GetDB(), rows, mode)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(plan)
}

// BatchConfirm applies a previously previewed plan (manager only). Rows
// that fail are skipped; the rest commit together.
func BatchConfirm(c *fiber.Ctx) error {
	var plan batchimport.Plan
	if err := c.BodyParser(&plan); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(plan.Rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "plan has no rows"})
	}

	result, err := batchimport.Apply(database.GetDB(), &plan, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"message":       fmt.Sprintf("Successfully processed %d products.", result.SuccessCount),
		"success_count": result.SuccessCount,
		"error_count":   result.ErrorCount,
	})
}

// BatchTemplate serves the import template as CSV or XLSX (manager only).
func BatchTemplate(c *fiber.Ctx) error {
	stamp := time.Now().Format("20060102")
	if c.Query("format", "csv") == "xlsx" {
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="inventory_template_%s.xlsx"`, stamp))
		return batchimport.WriteTemplateXLSX(c.Response().BodyWriter())
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="inventory_template_%s.csv"`, stamp))
	return batchimport.WriteTemplateCSV(c.Response().BodyWriter())
}
