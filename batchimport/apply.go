package batchimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nastradacha/inventory-app/ledger"
	"github.com/nastradacha/inventory-app/models"
	"gorm.io/gorm"
)

// ApplyResult summarizes a confirmed import.
type ApplyResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

// Apply writes a confirmed plan in a single transaction. Rows that fail at
// apply time are skipped and counted; the rest still commit. Quantities are
// written as computed at preview time, matching the confirm-what-you-saw
// contract of the upload screen.
func Apply(db *gorm.DB, plan *Plan, actor ledger.Actor) (*ApplyResult, error) {
	if !plan.Mode.Valid() {
		return nil, fmt.Errorf("unknown update mode %q", plan.Mode)
	}

	result := &ApplyResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range plan.Rows {
			// Nested transaction = savepoint per row, so one failed
			// statement cannot poison the rest of the import on postgres.
			err := tx.Transaction(func(row *gorm.DB) error {
				return applyRow(row, &plan.Rows[i], plan.Mode, actor)
			})
			if err != nil {
				result.ErrorCount++
				continue
			}
			result.SuccessCount++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch import failed: %w", err)
	}
	return result, nil
}

func applyRow(tx *gorm.DB, rp *RowPlan, mode UpdateMode, actor ledger.Actor) error {
	switch rp.Action {
	case "create":
		product := models.Product{
			Name:         rp.Name,
			Category:     rp.Category,
			CostPrice:    rp.CostPrice,
			SellingPrice: rp.SellingPrice,
			InitialQty:   rp.Quantity,
			QtyAtHand:    rp.Quantity,
			SafetyStock:  rp.SafetyStock,
			ExpiryDate:   rp.ExpiryDate,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return auditRow(tx, actor, models.ActionBatchCreateProduct,
			fmt.Sprintf("Created product: %s with quantity %d", rp.Name, rp.Quantity))

	case "update":
		var product models.Product
		err := tx.Where("LOWER(name) = LOWER(?)", rp.Name).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err != nil {
			return err
		}

		var changes []string
		if mode == ModeAddStock || mode == ModeReplaceStock || mode == ModeFullUpdate {
			if product.QtyAtHand != rp.NewQuantity {
				changes = append(changes, fmt.Sprintf("quantity: %d -> %d", product.QtyAtHand, rp.NewQuantity))
			}
			product.QtyAtHand = rp.NewQuantity
		}
		if mode == ModeUpdatePrices || mode == ModeFullUpdate {
			if !product.CostPrice.Equal(rp.CostPrice) {
				changes = append(changes, fmt.Sprintf("cost: %s -> %s", product.CostPrice.StringFixed(2), rp.CostPrice.StringFixed(2)))
			}
			if !product.SellingPrice.Equal(rp.SellingPrice) {
				changes = append(changes, fmt.Sprintf("selling: %s -> %s", product.SellingPrice.StringFixed(2), rp.SellingPrice.StringFixed(2)))
			}
			product.CostPrice = rp.CostPrice
			product.SellingPrice = rp.SellingPrice
		}
		if mode == ModeFullUpdate {
			product.Category = rp.Category
			product.ExpiryDate = rp.ExpiryDate
			product.SafetyStock = rp.SafetyStock
		}
		if err := tx.Save(&product).Error; err != nil {
			return err
		}
		return auditRow(tx, actor, models.ActionBatchUpdateProduct,
			fmt.Sprintf("Updated %s: %s", rp.Name, strings.Join(changes, ", ")))

	default:
		return fmt.Errorf("unknown row action %q", rp.Action)
	}
}

func auditRow(tx *gorm.DB, actor ledger.Actor, action, details string) error {
	return tx.Create(&models.LogEntry{
		Username: actor.Username,
		Action:   action,
		Details:  details,
	}).Error
}
