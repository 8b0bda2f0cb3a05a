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

// Sort columns the product list accepts; anything else falls back to name.
var productSortColumns = map[string]string{
	"name":       "name",
	"category":   "category",
	"qty":        "qty_at_hand",
	"price":      "selling_price",
	"created_at": "created_at",
}

// ProductList returns a paginated, searchable, sortable product listing.
func ProductList(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	search := c.Query("search", "")
	sort := productSortColumns[c.Query("sort", "name")]
	if sort == "" {
		sort = "name"
	}
	order := sort
	if c.Query("dir", "asc") == "desc" {
		order += " DESC"
	}

	query := db.Model(&models.Product{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)", "%"+search+"%", "%"+search+"%")
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return renderError(c, err)
	}

	var products []models.Product
	err := query.Order(order).Limit(limit).Offset((page - 1) * limit).Find(&products).Error
	if err != nil {
		return renderError(c, err)
	}

	totalPages := (totalCount + int64(limit) - 1) / int64(limit)
	return c.JSON(fiber.Map{
		"products": products,
		"pagination": fiber.Map{
			"current_page": page,
			"total_pages":  totalPages,
			"total_count":  totalCount,
			"limit":        limit,
		},
	})
}

// ProductView returns one product.
func ProductView(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	db := database.GetDB()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		return renderError(c, err)
	}
	return c.JSON(product)
}

// ProductUpdate edits a product's catalog fields (not its stock level).
func ProductUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	var req struct {
		Name         string          `json:"name"`
		Category     string          `json:"category"`
		CostPrice    decimal.Decimal `json:"cost_price"`
		SellingPrice decimal.Decimal `json:"selling_price"`
		ExpiryDate   *time.Time      `json:"expiry_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	product, err := ldgr().EditProduct(uint(id), ledger.EditProductInput{
		Name:         req.Name,
		Category:     req.Category,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		ExpiryDate:   req.ExpiryDate,
	}, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(product)
}

// ProductDelete removes a product without sale history (manager only).
func ProductDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := ldgr().DeleteProduct(uint(id), middleware.ActorFromCtx(c)); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ProductAdjust applies a signed manual stock correction (manager only).
func ProductAdjust(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	product, err := ldgr().AdjustQuantity(uint(id), req.Delta, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(product)
}
