package ledger

import (
	"testing"
	"time"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenShiftTwiceFails(t *testing.T) {
	l := New(testDB(t))

	shift, err := l.OpenShift(cashier.UserID, cashier)
	require.NoError(t, err)
	assert.True(t, shift.Open())

	var saoe *ShiftAlreadyOpenError
	_, err = l.OpenShift(cashier.UserID, cashier)
	require.ErrorAs(t, err, &saoe)
	assert.Equal(t, cashier.UserID, saoe.CashierID)

	// a different cashier is unaffected
	_, err = l.OpenShift(manager.UserID, manager)
	assert.NoError(t, err)
}

func TestOpenShiftUniquenessHoldsWithoutTheCheck(t *testing.T) {
	db := testDB(t)
	l := New(db)

	_, err := l.OpenShift(cashier.UserID, cashier)
	require.NoError(t, err)

	// a writer that never runs the open-shift lookup, standing in for a
	// concurrent open that raced past it, is stopped by the partial
	// unique index on open rows
	rogue := models.Shift{CashierID: cashier.UserID, OpenedAt: time.Now(), TotalRevenue: decimal.Zero}
	err = db.Create(&rogue).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// closing frees the slot, the index only covers open rows
	_, err = l.CloseShift(cashier.UserID, cashier)
	require.NoError(t, err)
	_, err = l.OpenShift(cashier.UserID, cashier)
	assert.NoError(t, err)
}

func TestCloseShiftWithoutOpenFails(t *testing.T) {
	l := New(testDB(t))

	var nose *NoOpenShiftError
	_, err := l.CloseShift(cashier.UserID, cashier)
	require.ErrorAs(t, err, &nose)
	assert.Equal(t, cashier.UserID, nose.CashierID)
}

func TestCloseShiftStampsTotals(t *testing.T) {
	db := testDB(t)
	l := New(db)
	milo := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")
	peak := seedProduct(t, l, "Peak Milk 170g", 30, "8.00", "10.00")

	// a sale before the shift opens stays out of the totals
	_, err := l.RecordSale(SaleInput{ProductID: milo.ID, Quantity: 3}, cashier)
	require.NoError(t, err)

	shift, err := l.OpenShift(cashier.UserID, cashier)
	require.NoError(t, err)

	override := money("14.00")
	_, err = l.RecordSale(SaleInput{ProductID: milo.ID, Quantity: 4, UnitPrice: &override}, cashier)
	require.NoError(t, err)
	_, err = l.RecordSale(SaleInput{ProductID: peak.ID, Quantity: 5}, cashier)
	require.NoError(t, err)

	closed, err := l.CloseShift(cashier.UserID, cashier)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, shift.ID, closed.ID)
	assert.Equal(t, 9, closed.TotalQty)
	// 4 x 14.00 (override) + 5 x 10.00 (list price)
	assert.True(t, closed.TotalRevenue.Equal(money("106.00")),
		"got revenue %s", closed.TotalRevenue)

	// a fresh shift can open afterwards
	_, err = l.OpenShift(cashier.UserID, cashier)
	assert.NoError(t, err)
}

func TestCloseShiftCountsAllCashiers(t *testing.T) {
	db := testDB(t)
	l := New(db)
	milo := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")

	_, err := l.OpenShift(cashier.UserID, cashier)
	require.NoError(t, err)

	// sales by another user still land in this shift's totals:
	// close aggregates store-wide since open time
	_, err = l.RecordSale(SaleInput{ProductID: milo.ID, Quantity: 2}, manager)
	require.NoError(t, err)

	closed, err := l.CloseShift(cashier.UserID, cashier)
	require.NoError(t, err)
	assert.Equal(t, 2, closed.TotalQty)
}
