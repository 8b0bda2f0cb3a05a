package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// All ledger errors are recoverable at the request boundary: the enclosing
// transaction is rolled back and the error is surfaced for display.

// ValidationError reports bad input shape or range. No mutation is applied.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports a sale (or sale edit) that asks for more
// units than are on hand.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock of %q: requested %d, %d at hand", e.ProductName, e.Requested, e.Available)
}

// BelowCostError reports a sale priced under the product's cost basis by a
// caller without manager privileges. The blocked attempt is still audited.
type BelowCostError struct {
	ProductName string
	Price       decimal.Decimal
	Cost        decimal.Decimal
}

func (e *BelowCostError) Error() string {
	return fmt.Sprintf("price %s for %q is below cost %s", e.Price.StringFixed(2), e.ProductName, e.Cost.StringFixed(2))
}

// HasHistoryError reports a product deletion blocked by existing sales.
type HasHistoryError struct {
	ProductName string
	SaleCount   int64
}

func (e *HasHistoryError) Error() string {
	return fmt.Sprintf("product %q has %d recorded sale(s) and cannot be deleted", e.ProductName, e.SaleCount)
}

// ShiftAlreadyOpenError reports an attempt to open a second concurrent
// shift for the same cashier.
type ShiftAlreadyOpenError struct {
	CashierID uint
}

func (e *ShiftAlreadyOpenError) Error() string {
	return fmt.Sprintf("cashier %d already has an open shift", e.CashierID)
}

// NoOpenShiftError reports a close with no shift to close.
type NoOpenShiftError struct {
	CashierID uint
}

func (e *NoOpenShiftError) Error() string {
	return fmt.Sprintf("cashier %d has no open shift", e.CashierID)
}
