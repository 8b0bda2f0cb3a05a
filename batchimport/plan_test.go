package batchimport

import (
	"testing"

	"github.com/nastradacha/inventory-app/ledger"
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
	return db
}

var manager = ledger.Actor{UserID: 1, Username: "ama", Role: models.RoleManager}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, db *gorm.DB, name string, qty int, cost, selling string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         name,
		Category:     "Beverages",
		CostPrice:    money(cost),
		SellingPrice: money(selling),
		InitialQty:   qty,
		QtyAtHand:    qty,
		SafetyStock:  5,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func row(num int, values map[string]string) Row {
	return Row{Num: num, Values: values}
}

func TestPreviewAppliesDefaults(t *testing.T) {
	db := testDB(t)

	plan, err := Preview(db, []Row{
		row(2, map[string]string{
			"name":          "Milo 500g",
			"cost_price":    "GH₵12.50",
			"selling_price": "15.00",
			"quantity":      "1,200",
		}),
	}, ModeAddStock)
	require.NoError(t, err)
	require.Len(t, plan.Rows, 1)

	rp := plan.Rows[0]
	assert.Equal(t, "create", rp.Action)
	assert.Equal(t, "General", rp.Category)
	assert.Equal(t, 5, rp.SafetyStock)
	assert.Equal(t, 1200, rp.Quantity)
	assert.Equal(t, 1200, rp.NewQuantity)
	assert.True(t, rp.CostPrice.Equal(money("12.50")))
}

func TestPreviewAccumulatesRowErrors(t *testing.T) {
	db := testDB(t)

	plan, err := Preview(db, []Row{
		row(2, map[string]string{"name": "", "cost_price": "abc", "selling_price": "10", "quantity": "5"}),
		row(3, map[string]string{"name": "Peak Milk 170g", "cost_price": "8.00", "selling_price": "10.00", "quantity": "30"}),
	}, ModeAddStock)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.TotalRows)
	assert.Equal(t, 1, plan.ValidRows)
	assert.Equal(t, 1, plan.ErrorRows)
	require.Len(t, plan.Errors, 2)
	assert.Contains(t, plan.Errors[0], "Row 2: name")
	assert.Contains(t, plan.Errors[1], "Row 2: cost_price")
}

func TestPreviewRejectsDuplicateNamesInFile(t *testing.T) {
	db := testDB(t)

	plan, err := Preview(db, []Row{
		row(2, map[string]string{"name": "Milo 500g", "cost_price": "12.50", "selling_price": "15.00", "quantity": "50"}),
		row(3, map[string]string{"name": "milo 500g", "cost_price": "13.00", "selling_price": "16.00", "quantity": "20"}),
	}, ModeAddStock)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.ValidRows)
	assert.Equal(t, 1, plan.ErrorRows)
	require.Len(t, plan.Errors, 1)
	assert.Contains(t, plan.Errors[0], "Row 3: name duplicates row 2")
}

func TestPreviewRejectsUnknownMode(t *testing.T) {
	_, err := Preview(testDB(t), nil, UpdateMode("upsert"))
	assert.Error(t, err)
}

func TestPreviewComputesNewQuantityPerMode(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, "Milo 500g", 10, "12.50", "15.00")

	rows := []Row{row(2, map[string]string{
		"name":          "milo 500g", // match is case-insensitive
		"cost_price":    "13.00",
		"selling_price": "16.00",
		"quantity":      "5",
	})}

	cases := []struct {
		mode UpdateMode
		want int
	}{
		{ModeAddStock, 15},
		{ModeReplaceStock, 5},
		{ModeUpdatePrices, 10},
		{ModeFullUpdate, 10},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			plan, err := Preview(db, rows, tc.mode)
			require.NoError(t, err)
			require.Len(t, plan.Rows, 1)

			rp := plan.Rows[0]
			assert.Equal(t, "update", rp.Action)
			assert.Equal(t, tc.want, rp.NewQuantity)
			require.NotNil(t, rp.OldQuantity)
			assert.Equal(t, 10, *rp.OldQuantity)
		})
	}
}

func TestApplyCreatesAndUpdates(t *testing.T) {
	db := testDB(t)
	seedProduct(t, db, "Peak Milk 170g", 30, "8.00", "10.00")

	plan, err := Preview(db, []Row{
		row(2, map[string]string{"name": "Milo 500g", "cost_price": "12.50", "selling_price": "15.00", "quantity": "50"}),
		row(3, map[string]string{"name": "Peak Milk 170g", "cost_price": "8.00", "selling_price": "10.00", "quantity": "20"}),
	}, ModeAddStock)
	require.NoError(t, err)
	require.Len(t, plan.Rows, 2)

	result, err := Apply(db, plan, manager)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)

	var milo models.Product
	require.NoError(t, db.Where("name = ?", "Milo 500g").First(&milo).Error)
	assert.Equal(t, 50, milo.QtyAtHand)
	assert.Equal(t, 50, milo.InitialQty)

	var peak models.Product
	require.NoError(t, db.Where("name = ?", "Peak Milk 170g").First(&peak).Error)
	assert.Equal(t, 50, peak.QtyAtHand)

	var audits int64
	require.NoError(t, db.Model(&models.LogEntry{}).
		Where("action IN ?", []string{models.ActionBatchCreateProduct, models.ActionBatchUpdateProduct}).
		Count(&audits).Error)
	assert.EqualValues(t, 2, audits)
}

func TestApplyUpdatePricesLeavesStockAlone(t *testing.T) {
	db := testDB(t)
	p := seedProduct(t, db, "Milo 500g", 10, "12.50", "15.00")

	plan, err := Preview(db, []Row{
		row(2, map[string]string{"name": "Milo 500g", "cost_price": "13.00", "selling_price": "16.50", "quantity": "999"}),
	}, ModeUpdatePrices)
	require.NoError(t, err)

	_, err = Apply(db, plan, manager)
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 10, got.QtyAtHand)
	assert.True(t, got.CostPrice.Equal(money("13.00")))
	assert.True(t, got.SellingPrice.Equal(money("16.50")))
}

func TestApplySurvivesFailedInsert(t *testing.T) {
	db := testDB(t)

	// A stale or hand-posted plan can carry two creates for the same name.
	// The second insert violates the unique index; its savepoint rolls back
	// while the rest of the import still commits.
	dup := RowPlan{
		Action: "create", Name: "Milo 500g", Category: "Beverages",
		CostPrice: money("12.50"), SellingPrice: money("15.00"),
		Quantity: 50, SafetyStock: 5, NewQuantity: 50,
	}
	other := RowPlan{
		Action: "create", Name: "Peak Milk 170g", Category: "Dairy",
		CostPrice: money("8.00"), SellingPrice: money("10.00"),
		Quantity: 30, SafetyStock: 5, NewQuantity: 30,
	}
	plan := &Plan{Mode: ModeAddStock, Rows: []RowPlan{dup, dup, other}}

	result, err := Apply(db, plan, manager)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// the row after the failure still landed
	var peak models.Product
	require.NoError(t, db.Where("name = ?", "Peak Milk 170g").First(&peak).Error)
	assert.Equal(t, 30, peak.QtyAtHand)
}

func TestApplySkipsRowsThatFail(t *testing.T) {
	db := testDB(t)
	p := seedProduct(t, db, "Peak Milk 170g", 30, "8.00", "10.00")

	plan, err := Preview(db, []Row{
		row(2, map[string]string{"name": "Peak Milk 170g", "cost_price": "8.00", "selling_price": "10.00", "quantity": "20"}),
		row(3, map[string]string{"name": "Milo 500g", "cost_price": "12.50", "selling_price": "15.00", "quantity": "50"}),
	}, ModeAddStock)
	require.NoError(t, err)

	// product vanishes between preview and confirm
	require.NoError(t, db.Delete(&models.Product{}, p.ID).Error)

	result, err := Apply(db, plan, manager)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)

	// the surviving row still committed
	var milo models.Product
	assert.NoError(t, db.Where("name = ?", "Milo 500g").First(&milo).Error)
}
