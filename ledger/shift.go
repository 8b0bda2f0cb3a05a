package ledger

import (
	"errors"
	"fmt"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OpenShift starts a working session for the cashier. A cashier can hold at
// most one open shift at a time.
func (l *Ledger) OpenShift(cashierID uint, actor Actor) (*models.Shift, error) {
	var result *models.Shift
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var open models.Shift
		err := forUpdate(tx).Where("cashier_id = ? AND closed_at IS NULL", cashierID).First(&open).Error
		if err == nil {
			return &ShiftAlreadyOpenError{CashierID: cashierID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up open shift: %w", err)
		}

		shift := models.Shift{
			CashierID:    cashierID,
			OpenedAt:     l.now(),
			TotalRevenue: decimal.Zero,
		}
		if err := tx.Create(&shift).Error; err != nil {
			// Lost a race against a concurrent open: the partial unique
			// index on open shifts rejects the second insert.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ShiftAlreadyOpenError{CashierID: cashierID}
			}
			return fmt.Errorf("failed to open shift: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionShiftOpened,
			"Opened shift %d for cashier %d", shift.ID, cashierID); err != nil {
			return err
		}
		result = &shift
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CloseShift stamps totals and the close time on the cashier's open shift.
// Totals cover every sale recorded since the shift opened, store-wide
// rather than per cashier, matching how end-of-day reconciliation is done
// on paper at the counter.
func (l *Ledger) CloseShift(cashierID uint, actor Actor) (*models.Shift, error) {
	var result *models.Shift
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var shift models.Shift
		err := forUpdate(tx).Where("cashier_id = ? AND closed_at IS NULL", cashierID).First(&shift).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NoOpenShiftError{CashierID: cashierID}
		}
		if err != nil {
			return fmt.Errorf("failed to look up open shift: %w", err)
		}

		var totals struct {
			Qty     int
			Revenue decimal.Decimal
		}
		err = tx.Raw(`
			SELECT
				COALESCE(SUM(s.qty_sold), 0) AS qty,
				COALESCE(SUM(s.qty_sold * COALESCE(s.unit_price, p.selling_price)), 0) AS revenue
			FROM sales s
			JOIN products p ON p.id = s.product_id
			WHERE s.created_at >= ?
		`, shift.OpenedAt).Scan(&totals).Error
		if err != nil {
			return fmt.Errorf("failed to aggregate shift sales: %w", err)
		}

		now := l.now()
		shift.ClosedAt = &now
		shift.TotalQty = totals.Qty
		shift.TotalRevenue = totals.Revenue
		if err := tx.Save(&shift).Error; err != nil {
			return fmt.Errorf("failed to close shift: %w", err)
		}
		if err := appendLog(tx, actor, models.ActionShiftClosed,
			"Closed shift %d: %d units, revenue %s", shift.ID, totals.Qty, totals.Revenue.StringFixed(2)); err != nil {
			return err
		}
		result = &shift
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OpenShiftFor returns the cashier's current open shift, or nil.
func (l *Ledger) OpenShiftFor(cashierID uint) (*models.Shift, error) {
	var shift models.Shift
	err := l.db.Where("cashier_id = ? AND closed_at IS NULL", cashierID).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up open shift: %w", err)
	}
	return &shift, nil
}
