// Package ledger owns product stock levels and the rules that keep them
// consistent: qty_at_hand always reflects intake minus net recorded sales,
// and every mutation runs inside one database transaction so a concurrent
// pair of sales cannot both pass the stock check.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger applies stock mutations against a single relational store.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a Ledger on the given database handle.
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// forUpdate adds row locking to a query so the check-then-update inside a
// transaction is atomic against concurrent requests. SQLite (used by the
// tests) has no FOR UPDATE syntax; its writes are serialized anyway.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// findByNameCI looks a product up by case-insensitive name.
func findByNameCI(tx *gorm.DB, name string) (*models.Product, error) {
	var p models.Product
	err := forUpdate(tx).Where("LOWER(name) = LOWER(?)", name).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RestockInput carries one stock intake.
type RestockInput struct {
	Name         string
	Category     string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     int
	SafetyStock  int
	ExpiryDate   *time.Time
}

func (in *RestockInput) validate() error {
	if in.Name == "" {
		return validationErrorf("product name is required")
	}
	if in.Quantity <= 0 {
		return validationErrorf("intake quantity must be at least 1, got %d", in.Quantity)
	}
	if !in.CostPrice.IsPositive() {
		return validationErrorf("cost price must be positive, got %s", in.CostPrice)
	}
	if !in.SellingPrice.IsPositive() {
		return validationErrorf("selling price must be positive, got %s", in.SellingPrice)
	}
	if in.SafetyStock < 0 {
		return validationErrorf("safety stock cannot be negative, got %d", in.SafetyStock)
	}
	return nil
}

// Restock applies an intake directly, bypassing the duplicate-name screen.
// An existing product (matched case-insensitively) gains Quantity on both
// qty_at_hand and initial_qty and has its prices, expiry and safety stock
// overwritten; an unknown name creates a new product.
func (l *Ledger) Restock(in RestockInput, actor Actor) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var result *models.Product
	err := l.db.Transaction(func(tx *gorm.DB) error {
		p, err := l.restockTx(tx, in, actor)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// restockTx is Restock inside an already-open transaction. Input must be
// validated by the caller.
func (l *Ledger) restockTx(tx *gorm.DB, in RestockInput, actor Actor) (*models.Product, error) {
	p, err := findByNameCI(tx, in.Name)
	switch {
	case err == nil:
		p.QtyAtHand += in.Quantity
		p.InitialQty += in.Quantity
		p.CostPrice = in.CostPrice
		p.SellingPrice = in.SellingPrice
		p.ExpiryDate = in.ExpiryDate
		p.SafetyStock = in.SafetyStock
		if err := tx.Save(p).Error; err != nil {
			return nil, fmt.Errorf("failed to restock product: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionRestock,
			"Restocked %s: +%d (now %d at hand)", p.Name, in.Quantity, p.QtyAtHand); err != nil {
			return nil, err
		}
		return p, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		category := in.Category
		if category == "" {
			category = "General"
		}
		p = &models.Product{
			Name:         in.Name,
			Category:     category,
			ExpiryDate:   in.ExpiryDate,
			CostPrice:    in.CostPrice,
			SellingPrice: in.SellingPrice,
			InitialQty:   in.Quantity,
			QtyAtHand:    in.Quantity,
			SafetyStock:  in.SafetyStock,
		}
		if err := tx.Create(p).Error; err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionProductCreated,
			"Created product %s with quantity %d", p.Name, in.Quantity); err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
}

// SaleInput carries one sale to record.
type SaleInput struct {
	ProductID uint
	Quantity  int
	UnitPrice *decimal.Decimal // nil means the product's selling price
	Date      time.Time        // zero means today
	CashierID *uint
}

// RecordSale checks stock sufficiency, deducts the quantity and appends the
// sale, all in one transaction. A price under the product's cost basis is
// allowed only for managers; a blocked attempt still leaves an audit entry.
func (l *Ledger) RecordSale(in SaleInput, actor Actor) (*models.Sale, error) {
	if in.Quantity <= 0 {
		return nil, validationErrorf("sale quantity must be at least 1, got %d", in.Quantity)
	}
	if in.UnitPrice != nil && !in.UnitPrice.IsPositive() {
		return nil, validationErrorf("unit price must be positive, got %s", in.UnitPrice)
	}
	saleDate := in.Date
	if saleDate.IsZero() {
		saleDate = l.now()
	}

	var result *models.Sale
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).First(&p, in.ProductID).Error; err != nil {
			return fmt.Errorf("failed to look up product %d: %w", in.ProductID, err)
		}
		if in.Quantity > p.QtyAtHand {
			return &InsufficientStockError{ProductName: p.Name, Requested: in.Quantity, Available: p.QtyAtHand}
		}

		effective := p.SellingPrice
		if in.UnitPrice != nil {
			effective = *in.UnitPrice
		}
		if effective.LessThan(p.CostPrice) {
			if !actor.IsManager() {
				return &BelowCostError{ProductName: p.Name, Price: effective, Cost: p.CostPrice}
			}
			if err := appendLog(tx, actor, models.ActionBelowCostOverride,
				"Sold %s at %s, below cost %s", p.Name, effective.StringFixed(2), p.CostPrice.StringFixed(2)); err != nil {
				return err
			}
		}

		p.QtyAtHand -= in.Quantity
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to deduct stock: %w", err)
		}

		sale := models.Sale{
			ProductID: p.ID,
			SaleDate:  saleDate,
			QtySold:   in.Quantity,
			UnitPrice: in.UnitPrice,
			CashierID: in.CashierID,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionSaleRecorded,
			"Sold %d x %s at %s", in.Quantity, p.Name, effective.StringFixed(2)); err != nil {
			return err
		}
		result = &sale
		return nil
	})
	if err != nil {
		l.auditBlockedBelowCost(err, actor)
		return nil, err
	}
	return result, nil
}

// EditSale changes a sale's quantity and/or price override and applies the
// exact inventory delta: raising the quantity sold deducts further stock,
// lowering it returns the difference.
func (l *Ledger) EditSale(saleID uint, newQty int, newUnitPrice *decimal.Decimal, actor Actor) (*models.Sale, error) {
	if newQty <= 0 {
		return nil, validationErrorf("sale quantity must be at least 1, got %d", newQty)
	}
	if newUnitPrice != nil && !newUnitPrice.IsPositive() {
		return nil, validationErrorf("unit price must be positive, got %s", newUnitPrice)
	}

	var result *models.Sale
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := forUpdate(tx).First(&sale, saleID).Error; err != nil {
			return fmt.Errorf("failed to look up sale %d: %w", saleID, err)
		}
		var p models.Product
		if err := forUpdate(tx).First(&p, sale.ProductID).Error; err != nil {
			return fmt.Errorf("failed to look up product %d: %w", sale.ProductID, err)
		}

		delta := newQty - sale.QtySold
		if delta > p.QtyAtHand {
			return &InsufficientStockError{ProductName: p.Name, Requested: delta, Available: p.QtyAtHand}
		}

		effective := p.SellingPrice
		if newUnitPrice != nil {
			effective = *newUnitPrice
		}
		if effective.LessThan(p.CostPrice) {
			if !actor.IsManager() {
				return &BelowCostError{ProductName: p.Name, Price: effective, Cost: p.CostPrice}
			}
			if err := appendLog(tx, actor, models.ActionBelowCostOverride,
				"Edited sale of %s to %s, below cost %s", p.Name, effective.StringFixed(2), p.CostPrice.StringFixed(2)); err != nil {
				return err
			}
		}

		oldQty := sale.QtySold
		p.QtyAtHand -= delta
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to apply stock delta: %w", err)
		}
		sale.QtySold = newQty
		sale.UnitPrice = newUnitPrice
		if err := tx.Save(&sale).Error; err != nil {
			return fmt.Errorf("failed to update sale: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionSaleEdited,
			"Edited sale %d of %s: qty %d -> %d", sale.ID, p.Name, oldQty, newQty); err != nil {
			return err
		}
		result = &sale
		return nil
	})
	if err != nil {
		l.auditBlockedBelowCost(err, actor)
		return nil, err
	}
	return result, nil
}

// VoidSale removes a sale and restores its full quantity to stock.
func (l *Ledger) VoidSale(saleID uint, actor Actor) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := forUpdate(tx).First(&sale, saleID).Error; err != nil {
			return fmt.Errorf("failed to look up sale %d: %w", saleID, err)
		}
		var p models.Product
		if err := forUpdate(tx).First(&p, sale.ProductID).Error; err != nil {
			return fmt.Errorf("failed to look up product %d: %w", sale.ProductID, err)
		}

		p.QtyAtHand += sale.QtySold
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		if err := tx.Delete(&sale).Error; err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return appendLog(tx, actor, models.ActionSaleVoided,
			"Voided sale %d: returned %d x %s to stock", sale.ID, sale.QtySold, p.Name)
	})
}

// AdjustQuantity applies a signed manual correction to qty_at_hand.
func (l *Ledger) AdjustQuantity(productID uint, delta int, actor Actor) (*models.Product, error) {
	if delta == 0 {
		return nil, validationErrorf("adjustment delta cannot be zero")
	}
	var result *models.Product
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).First(&p, productID).Error; err != nil {
			return fmt.Errorf("failed to look up product %d: %w", productID, err)
		}
		if p.QtyAtHand+delta < 0 {
			return validationErrorf("adjustment of %+d would take %q below zero (%d at hand)", delta, p.Name, p.QtyAtHand)
		}
		p.QtyAtHand += delta
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to adjust quantity: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionQtyAdjusted,
			"Adjusted %s by %+d (now %d at hand)", p.Name, delta, p.QtyAtHand); err != nil {
			return err
		}
		result = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteProduct removes a product from the catalog. Products with any sale
// history are kept (void the sales first if the removal is really wanted).
func (l *Ledger) DeleteProduct(productID uint, actor Actor) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).First(&p, productID).Error; err != nil {
			return fmt.Errorf("failed to look up product %d: %w", productID, err)
		}
		var saleCount int64
		if err := tx.Model(&models.Sale{}).Where("product_id = ?", p.ID).Count(&saleCount).Error; err != nil {
			return fmt.Errorf("failed to count sales: %w", err)
		}
		if saleCount > 0 {
			return &HasHistoryError{ProductName: p.Name, SaleCount: saleCount}
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return appendLog(tx, actor, models.ActionProductDeleted, "Deleted product %s", p.Name)
	})
}

// EditProductInput carries a full catalog edit (not a stock mutation).
type EditProductInput struct {
	Name         string
	Category     string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	ExpiryDate   *time.Time
}

// EditProduct updates a product's catalog fields. qty_at_hand and
// initial_qty are deliberately untouchable here; price changes are recorded
// in the price history.
func (l *Ledger) EditProduct(productID uint, in EditProductInput, actor Actor) (*models.Product, error) {
	if in.Name == "" {
		return nil, validationErrorf("product name is required")
	}
	if !in.CostPrice.IsPositive() || !in.SellingPrice.IsPositive() {
		return nil, validationErrorf("prices must be positive")
	}

	var result *models.Product
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := forUpdate(tx).First(&p, productID).Error; err != nil {
			return fmt.Errorf("failed to look up product %d: %w", productID, err)
		}

		var clash int64
		err := tx.Model(&models.Product{}).
			Where("LOWER(name) = LOWER(?) AND id <> ?", in.Name, p.ID).
			Count(&clash).Error
		if err != nil {
			return fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if clash > 0 {
			return validationErrorf("another product is already named %q", in.Name)
		}

		if !p.CostPrice.Equal(in.CostPrice) {
			change := models.PriceChange{
				ProductID: p.ID, Field: models.PriceFieldCost,
				OldPrice: p.CostPrice, NewPrice: in.CostPrice, ChangedBy: actor.Username,
			}
			if err := tx.Create(&change).Error; err != nil {
				return fmt.Errorf("failed to record price change: %w", err)
			}
			if err := appendLog(tx, actor, models.ActionPriceChange,
				"%s cost price %s -> %s", p.Name, p.CostPrice.StringFixed(2), in.CostPrice.StringFixed(2)); err != nil {
				return err
			}
		}
		if !p.SellingPrice.Equal(in.SellingPrice) {
			change := models.PriceChange{
				ProductID: p.ID, Field: models.PriceFieldSelling,
				OldPrice: p.SellingPrice, NewPrice: in.SellingPrice, ChangedBy: actor.Username,
			}
			if err := tx.Create(&change).Error; err != nil {
				return fmt.Errorf("failed to record price change: %w", err)
			}
			if err := appendLog(tx, actor, models.ActionPriceChange,
				"%s selling price %s -> %s", p.Name, p.SellingPrice.StringFixed(2), in.SellingPrice.StringFixed(2)); err != nil {
				return err
			}
		}

		p.Name = in.Name
		p.Category = in.Category
		p.CostPrice = in.CostPrice
		p.SellingPrice = in.SellingPrice
		p.ExpiryDate = in.ExpiryDate
		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionProductUpdated, "Updated product %s", p.Name); err != nil {
			return err
		}
		result = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// auditBlockedBelowCost records the blocked attempt outside the rolled-back
// transaction so the audit trail keeps it.
func (l *Ledger) auditBlockedBelowCost(err error, actor Actor) {
	var bce *BelowCostError
	if !errors.As(err, &bce) {
		return
	}
	_ = appendLog(l.db, actor, models.ActionBelowCostBlocked,
		"Blocked sale of %s at %s, below cost %s", bce.ProductName, bce.Price.StringFixed(2), bce.Cost.StringFixed(2))
}
