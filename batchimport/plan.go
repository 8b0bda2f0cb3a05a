package batchimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nastradacha/inventory-app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RowPlan is the planned effect of one valid spreadsheet row, shown to the
// manager before anything is written.
type RowPlan struct {
	RowNum int    `json:"row_num"`
	Action string `json:"action"` // "create" or "update"

	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int             `json:"quantity"`
	SafetyStock  int             `json:"safety_stock"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`

	// For updates: the matched product and the before/after quantities
	ProductID   uint             `json:"product_id,omitempty"`
	NewQuantity int              `json:"new_quantity"`
	OldCost     *decimal.Decimal `json:"old_cost,omitempty"`
	OldSelling  *decimal.Decimal `json:"old_selling,omitempty"`
	OldQuantity *int             `json:"old_quantity,omitempty"`
}

// Plan is a full import preview: the rows that will apply and the ones that
// were rejected, with counts for the summary line.
type Plan struct {
	Mode      UpdateMode `json:"mode"`
	Rows      []RowPlan  `json:"rows"`
	Errors    []string   `json:"errors"`
	TotalRows int        `json:"total_rows"`
	ValidRows int        `json:"valid_rows"`
	ErrorRows int        `json:"error_rows"`
}

// Preview validates every row against the catalog and computes the change
// each one would make under the given mode. Row failures are accumulated,
// never fatal.
func Preview(db *gorm.DB, rows []Row, mode UpdateMode) (*Plan, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown update mode %q", mode)
	}

	plan := &Plan{Mode: mode, TotalRows: len(rows)}
	seen := map[string]int{} // lowercased name -> first row carrying it
	for _, row := range rows {
		rp, errs := planRow(db, row, mode)
		if len(errs) > 0 {
			plan.Errors = append(plan.Errors, errs...)
			continue
		}
		key := strings.ToLower(rp.Name)
		if first, ok := seen[key]; ok {
			plan.Errors = append(plan.Errors, fmt.Sprintf("Row %d: name duplicates row %d in this file", row.Num, first))
			continue
		}
		seen[key] = row.Num
		plan.Rows = append(plan.Rows, *rp)
	}
	plan.ValidRows = len(plan.Rows)
	plan.ErrorRows = plan.TotalRows - plan.ValidRows
	return plan, nil
}

func planRow(db *gorm.DB, row Row, mode UpdateMode) (*RowPlan, []string) {
	var errs []string
	fail := func(field, msg string) {
		errs = append(errs, fmt.Sprintf("Row %d: %s %s", row.Num, field, msg))
	}

	name := row.Values["name"]
	if name == "" {
		fail("name", "is required")
	}

	cost, err := parseMoney(row.Values["cost_price"])
	if err != nil {
		fail("cost_price", err.Error())
	} else if cost.IsNegative() {
		fail("cost_price", "must be positive")
	}
	selling, err := parseMoney(row.Values["selling_price"])
	if err != nil {
		fail("selling_price", err.Error())
	} else if selling.IsNegative() {
		fail("selling_price", "must be positive")
	}
	qty, err := parseQty(row.Values["quantity"])
	if err != nil {
		fail("quantity", err.Error())
	} else if qty < 0 {
		fail("quantity", "must be positive")
	}

	safety := 5
	if raw := row.Values["safety_stock"]; raw != "" {
		safety, err = parseQty(raw)
		if err != nil {
			fail("safety_stock", err.Error())
		} else if safety < 0 {
			fail("safety_stock", "must be positive")
		}
	}

	category := row.Values["category"]
	if category == "" {
		category = "General"
	}

	// Unparseable expiry dates are dropped, not reported: the column is
	// optional and real uploads carry all sorts of date junk.
	var expiry *time.Time
	if raw := row.Values["expiry_date"]; raw != "" {
		if t, err := parseDate(raw); err == nil {
			expiry = &t
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	rp := &RowPlan{
		RowNum:       row.Num,
		Name:         name,
		Category:     category,
		CostPrice:    cost,
		SellingPrice: selling,
		Quantity:     qty,
		SafetyStock:  safety,
		ExpiryDate:   expiry,
	}

	var existing models.Product
	err = db.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rp.Action = "create"
		rp.NewQuantity = qty
	case err != nil:
		fail("name", "lookup failed: "+err.Error())
		return nil, errs
	default:
		rp.Action = "update"
		rp.ProductID = existing.ID
		oldQty := existing.QtyAtHand
		rp.OldQuantity = &oldQty
		rp.OldCost = &existing.CostPrice
		rp.OldSelling = &existing.SellingPrice
		switch mode {
		case ModeAddStock:
			rp.NewQuantity = existing.QtyAtHand + qty
		case ModeReplaceStock:
			rp.NewQuantity = qty
		default:
			rp.NewQuantity = existing.QtyAtHand
		}
	}
	return rp, nil
}
