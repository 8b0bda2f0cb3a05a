// Package reports runs the read-only aggregate queries behind the manager
// dashboard and the sales report screens. Revenue always uses the per-sale
// override price when one was recorded, falling back to the product's
// listed selling price.
package reports

import (
	"fmt"
	"time"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Summary is the dashboard payload.
type Summary struct {
	TotalProducts    int64            `json:"total_products"`
	StockCostValue   decimal.Decimal  `json:"stock_cost_value"`
	StockRetailValue decimal.Decimal  `json:"stock_retail_value"`
	ProjectedProfit  decimal.Decimal  `json:"projected_profit"`
	LowStock         []models.Product `json:"low_stock"`
	TopSellers       []TopSeller      `json:"top_sellers"`
}

// TopSeller is one row of the best-sellers table.
type TopSeller struct {
	Name  string `json:"name"`
	Units int64  `json:"units"`
}

// Dashboard computes the stock valuation summary, the low-stock list and
// the top five sellers.
func Dashboard(db *gorm.DB) (*Summary, error) {
	summary := &Summary{}

	if err := db.Model(&models.Product{}).Count(&summary.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var valuation struct {
		CostValue   decimal.Decimal
		RetailValue decimal.Decimal
	}
	err := db.Raw(`
		SELECT
			COALESCE(SUM(qty_at_hand * cost_price), 0) AS cost_value,
			COALESCE(SUM(qty_at_hand * selling_price), 0) AS retail_value
		FROM products
	`).Scan(&valuation).Error
	if err != nil {
		return nil, fmt.Errorf("failed to value stock: %w", err)
	}
	summary.StockCostValue = valuation.CostValue
	summary.StockRetailValue = valuation.RetailValue
	summary.ProjectedProfit = valuation.RetailValue.Sub(valuation.CostValue)

	err = db.Where("qty_at_hand < safety_stock").Order("qty_at_hand").Find(&summary.LowStock).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}

	err = db.Raw(`
		SELECT p.name, SUM(s.qty_sold) AS units
		FROM sales s
		JOIN products p ON p.id = s.product_id
		GROUP BY p.name
		ORDER BY units DESC
		LIMIT 5
	`).Scan(&summary.TopSellers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank sellers: %w", err)
	}

	return summary, nil
}

// SalesRow is one aggregate bucket of a sales report.
type SalesRow struct {
	Key     string          `json:"key"` // day, category or product name
	Qty     int64           `json:"qty"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

const salesAggregates = `
	COALESCE(SUM(s.qty_sold), 0) AS qty,
	COALESCE(SUM(s.qty_sold * COALESCE(s.unit_price, p.selling_price)), 0) AS revenue,
	COALESCE(SUM(s.qty_sold * p.cost_price), 0) AS cost
`

// SalesByDay aggregates sales per calendar day in [from, to].
func SalesByDay(db *gorm.DB, from, to time.Time) ([]SalesRow, error) {
	return salesReport(db, "DATE(s.sale_date)", from, to)
}

// SalesByCategory aggregates sales per product category in [from, to].
func SalesByCategory(db *gorm.DB, from, to time.Time) ([]SalesRow, error) {
	return salesReport(db, "p.category", from, to)
}

// SalesByProduct aggregates sales per product in [from, to].
func SalesByProduct(db *gorm.DB, from, to time.Time) ([]SalesRow, error) {
	return salesReport(db, "p.name", from, to)
}

func salesReport(db *gorm.DB, keyExpr string, from, to time.Time) ([]SalesRow, error) {
	var rows []SalesRow
	query := fmt.Sprintf(`
		SELECT %s AS key, %s
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE DATE(s.sale_date) >= DATE(?) AND DATE(s.sale_date) <= DATE(?)
		GROUP BY %s
		ORDER BY key
	`, keyExpr, salesAggregates, keyExpr)

	if err := db.Raw(query, from, to).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	for i := range rows {
		rows[i].Profit = rows[i].Revenue.Sub(rows[i].Cost)
	}
	return rows, nil
}
