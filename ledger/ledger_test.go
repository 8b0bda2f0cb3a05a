package ledger

import (
	"testing"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every session sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	// same partial index the migration creates
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX idx_shifts_one_open_per_cashier
		ON shifts (cashier_id) WHERE closed_at IS NULL`).Error)
	return db
}

var (
	manager = Actor{UserID: 1, Username: "ama", Role: models.RoleManager}
	cashier = Actor{UserID: 2, Username: "kofi", Role: models.RoleCashier}
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, l *Ledger, name string, qty int, cost, selling string) *models.Product {
	t.Helper()
	p, err := l.Restock(RestockInput{
		Name:         name,
		Category:     "Beverages",
		CostPrice:    money(cost),
		SellingPrice: money(selling),
		Quantity:     qty,
		SafetyStock:  5,
	}, manager)
	require.NoError(t, err)
	return p
}

func reload(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return &p
}

// currentSaleQty sums the live sale quantities for a product.
func currentSaleQty(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var total int64
	require.NoError(t, db.Model(&models.Sale{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(qty_sold), 0)").Scan(&total).Error)
	return int(total)
}

// assertInvariant checks qty_at_hand == initial_qty - sum(current sales).
func assertInvariant(t *testing.T, db *gorm.DB, productID uint) {
	t.Helper()
	p := reload(t, db, productID)
	assert.Equal(t, p.InitialQty-currentSaleQty(t, db, productID), p.QtyAtHand,
		"stock invariant broken for %s", p.Name)
}

func TestRestockValidation(t *testing.T) {
	l := New(testDB(t))

	var ve *ValidationError

	_, err := l.Restock(RestockInput{Name: "Milo 500g", CostPrice: money("10"), SellingPrice: money("12"), Quantity: 0}, manager)
	assert.ErrorAs(t, err, &ve)

	_, err = l.Restock(RestockInput{Name: "Milo 500g", CostPrice: money("0"), SellingPrice: money("12"), Quantity: 5}, manager)
	assert.ErrorAs(t, err, &ve)

	_, err = l.Restock(RestockInput{Name: "", CostPrice: money("10"), SellingPrice: money("12"), Quantity: 5}, manager)
	assert.ErrorAs(t, err, &ve)
}

func TestRestockCreatesAndTopsUp(t *testing.T) {
	db := testDB(t)
	l := New(db)

	p := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")
	assert.Equal(t, 50, p.QtyAtHand)
	assert.Equal(t, 50, p.InitialQty)

	// case-insensitive match tops up the same row and overwrites prices
	p2, err := l.Restock(RestockInput{
		Name:         "MILO 500G",
		CostPrice:    money("13.00"),
		SellingPrice: money("16.00"),
		Quantity:     20,
		SafetyStock:  8,
	}, manager)
	require.NoError(t, err)
	assert.Equal(t, p.ID, p2.ID)
	assert.Equal(t, 70, p2.QtyAtHand)
	assert.Equal(t, 70, p2.InitialQty)
	assert.True(t, p2.CostPrice.Equal(money("13.00")))
	assert.Equal(t, 8, p2.SafetyStock)

	assertInvariant(t, db, p.ID)
}

func TestRecordSaleDeductsStock(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")

	sale, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 8}, cashier)
	require.NoError(t, err)
	assert.Equal(t, 8, sale.QtySold)
	assert.Equal(t, 42, reload(t, db, p.ID).QtyAtHand)
	assertInvariant(t, db, p.ID)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 5, "12.50", "15.00")

	_, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 6}, cashier)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 6, ise.Requested)
	assert.Equal(t, 5, ise.Available)

	// no mutation applied
	assert.Equal(t, 5, reload(t, db, p.ID).QtyAtHand)
	assert.Equal(t, 0, currentSaleQty(t, db, p.ID))
}

func TestBelowCostPolicy(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")
	cheap := money("10.00")

	// cashier: blocked, nothing mutated, blocked attempt audited
	_, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 2, UnitPrice: &cheap}, cashier)
	var bce *BelowCostError
	require.ErrorAs(t, err, &bce)
	assert.Equal(t, 50, reload(t, db, p.ID).QtyAtHand)

	var blocked int64
	require.NoError(t, db.Model(&models.LogEntry{}).
		Where("action = ?", models.ActionBelowCostBlocked).Count(&blocked).Error)
	assert.EqualValues(t, 1, blocked)

	// manager: allowed, override audited
	_, err = l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 2, UnitPrice: &cheap}, manager)
	require.NoError(t, err)
	assert.Equal(t, 48, reload(t, db, p.ID).QtyAtHand)

	var overrides int64
	require.NoError(t, db.Model(&models.LogEntry{}).
		Where("action = ?", models.ActionBelowCostOverride).Count(&overrides).Error)
	assert.EqualValues(t, 1, overrides)
}

func TestEditSaleAppliesExactDelta(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")

	sale, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 10}, cashier)
	require.NoError(t, err)
	assert.Equal(t, 40, reload(t, db, p.ID).QtyAtHand)

	// raise the quantity: extra units leave stock
	_, err = l.EditSale(sale.ID, 15, nil, cashier)
	require.NoError(t, err)
	assert.Equal(t, 35, reload(t, db, p.ID).QtyAtHand)
	assertInvariant(t, db, p.ID)

	// lower it: the difference returns
	_, err = l.EditSale(sale.ID, 4, nil, cashier)
	require.NoError(t, err)
	assert.Equal(t, 46, reload(t, db, p.ID).QtyAtHand)
	assertInvariant(t, db, p.ID)
}

func TestEditSaleInsufficientStock(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 10, "12.50", "15.00")

	sale, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 4}, cashier)
	require.NoError(t, err)

	// 6 at hand; going from 4 to 11 sold needs 7 more
	_, err = l.EditSale(sale.ID, 11, nil, cashier)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)

	assert.Equal(t, 6, reload(t, db, p.ID).QtyAtHand)
	assert.Equal(t, 4, currentSaleQty(t, db, p.ID))
}

func TestVoidSaleRestoresStock(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 50, "12.50", "15.00")

	sale, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 7}, cashier)
	require.NoError(t, err)
	assert.Equal(t, 43, reload(t, db, p.ID).QtyAtHand)

	require.NoError(t, l.VoidSale(sale.ID, manager))
	assert.Equal(t, 50, reload(t, db, p.ID).QtyAtHand)
	assertInvariant(t, db, p.ID)

	// voiding then re-recording the same quantity lands back where we were
	_, err = l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 7}, cashier)
	require.NoError(t, err)
	assert.Equal(t, 43, reload(t, db, p.ID).QtyAtHand)
	assertInvariant(t, db, p.ID)
}

func TestOperationSequenceKeepsInvariant(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 20, "12.50", "15.00")

	s1, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 5}, cashier)
	require.NoError(t, err)
	assertInvariant(t, db, p.ID)

	_, err = l.Restock(RestockInput{Name: "Milo 500g", CostPrice: money("12.50"), SellingPrice: money("15.00"), Quantity: 30, SafetyStock: 5}, manager)
	require.NoError(t, err)
	assertInvariant(t, db, p.ID)

	_, err = l.EditSale(s1.ID, 9, nil, cashier)
	require.NoError(t, err)
	assertInvariant(t, db, p.ID)

	s2, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 12}, cashier)
	require.NoError(t, err)
	assertInvariant(t, db, p.ID)

	require.NoError(t, l.VoidSale(s2.ID, manager))
	assertInvariant(t, db, p.ID)
}

func TestAdjustQuantity(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 10, "12.50", "15.00")

	adjusted, err := l.AdjustQuantity(p.ID, -3, manager)
	require.NoError(t, err)
	assert.Equal(t, 7, adjusted.QtyAtHand)

	var ve *ValidationError
	_, err = l.AdjustQuantity(p.ID, -8, manager)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 7, reload(t, db, p.ID).QtyAtHand)

	_, err = l.AdjustQuantity(p.ID, 0, manager)
	assert.ErrorAs(t, err, &ve)
}

func TestDeleteProductWithHistory(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 10, "12.50", "15.00")

	sale, err := l.RecordSale(SaleInput{ProductID: p.ID, Quantity: 1}, cashier)
	require.NoError(t, err)

	var hhe *HasHistoryError
	err = l.DeleteProduct(p.ID, manager)
	require.ErrorAs(t, err, &hhe)
	assert.EqualValues(t, 1, hhe.SaleCount)

	// product and its sales survive the refusal
	assert.NotNil(t, reload(t, db, p.ID))
	var saleStillThere models.Sale
	assert.NoError(t, db.First(&saleStillThere, sale.ID).Error)

	// after voiding the only sale the delete goes through
	require.NoError(t, l.VoidSale(sale.ID, manager))
	require.NoError(t, l.DeleteProduct(p.ID, manager))
	var gone models.Product
	assert.ErrorIs(t, db.First(&gone, p.ID).Error, gorm.ErrRecordNotFound)
}

func TestEditProductRecordsPriceHistory(t *testing.T) {
	db := testDB(t)
	l := New(db)
	p := seedProduct(t, l, "Milo 500g", 10, "12.50", "15.00")

	_, err := l.EditProduct(p.ID, EditProductInput{
		Name:         "Milo 500g",
		Category:     "Beverages",
		CostPrice:    money("12.50"),
		SellingPrice: money("16.00"),
	}, manager)
	require.NoError(t, err)

	var changes []models.PriceChange
	require.NoError(t, db.Find(&changes).Error)
	require.Len(t, changes, 1)
	assert.Equal(t, models.PriceFieldSelling, changes[0].Field)
	assert.True(t, changes[0].OldPrice.Equal(money("15.00")))
	assert.True(t, changes[0].NewPrice.Equal(money("16.00")))
}

func TestEditProductRejectsNameClash(t *testing.T) {
	db := testDB(t)
	l := New(db)
	seedProduct(t, l, "Milo 500g", 10, "12.50", "15.00")
	other := seedProduct(t, l, "Peak Milk 170g", 10, "8.00", "10.00")

	var ve *ValidationError
	_, err := l.EditProduct(other.ID, EditProductInput{
		Name:         "milo 500g",
		Category:     "Dairy",
		CostPrice:    money("8.00"),
		SellingPrice: money("10.00"),
	}, manager)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Peak Milk 170g", reload(t, db, other.ID).Name)
}
