package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/models"
)

// LogList returns the audit trail, newest first (manager only).
func LogList(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := db.Model(&models.LogEntry{})
	if action := c.Query("action", ""); action != "" {
		query = query.Where("action = ?", action)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return renderError(c, err)
	}

	var entries []models.LogEntry
	err := query.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&entries).Error
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries":     entries,
		"total_count": totalCount,
		"page":        page,
		"limit":       limit,
	})
}

// PriceChangeList returns the price history, newest first (manager only).
func PriceChangeList(c *fiber.Ctx) error {
	db := database.GetDB()

	query := db.Model(&models.PriceChange{}).Preload("Product")
	if productID := c.QueryInt("product_id", 0); productID > 0 {
		query = query.Where("product_id = ?", productID)
	}

	var changes []models.PriceChange
	if err := query.Order("created_at DESC").Limit(200).Find(&changes).Error; err != nil {
		return renderError(c, err)
	}
	return c.JSON(changes)
}
