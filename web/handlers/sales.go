package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/ledger"
	"github.com/nastradacha/inventory-app/models"
	"github.com/nastradacha/inventory-app/web/middleware"
	"github.com/shopspring/decimal"
)

// SaleRecord records one sale, deducting stock.
func SaleRecord(c *fiber.Ctx) error {
	var req struct {
		ProductID uint             `json:"product_id"`
		Quantity  int              `json:"quantity"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
		SaleDate  *time.Time       `json:"sale_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	actor := middleware.ActorFromCtx(c)
	in := ledger.SaleInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		CashierID: &actor.UserID,
	}
	if req.SaleDate != nil {
		in.Date = *req.SaleDate
	}

	sale, err := ldgr().RecordSale(in, actor)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// SaleEdit changes a sale's quantity and/or price override, applying the
// stock delta.
func SaleEdit(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sale id"})
	}
	var req struct {
		Quantity  int              `json:"quantity"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	sale, err := ldgr().EditSale(uint(id), req.Quantity, req.UnitPrice, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(sale)
}

// SaleVoid removes a sale and returns its quantity to stock.
func SaleVoid(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sale id"})
	}
	if err := ldgr().VoidSale(uint(id), middleware.ActorFromCtx(c)); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SaleList returns a paginated sale listing with optional date filters.
func SaleList(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	dateFrom := c.Query("date_from", "")
	dateTo := c.Query("date_to", "")

	query := db.Model(&models.Sale{}).Preload("Product")
	if dateFrom != "" {
		query = query.Where("DATE(sale_date) >= DATE(?)", dateFrom)
	}
	if dateTo != "" {
		query = query.Where("DATE(sale_date) <= DATE(?)", dateTo)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return renderError(c, err)
	}

	var sales []models.Sale
	err := query.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&sales).Error
	if err != nil {
		return renderError(c, err)
	}

	totalPages := (totalCount + int64(limit) - 1) / int64(limit)
	return c.JSON(fiber.Map{
		"sales": sales,
		"pagination": fiber.Map{
			"current_page": page,
			"total_pages":  totalPages,
			"total_count":  totalCount,
			"limit":        limit,
		},
	})
}
