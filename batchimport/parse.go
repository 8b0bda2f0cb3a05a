// Package batchimport turns uploaded inventory spreadsheets (CSV or XLSX)
// into a previewable change plan and applies confirmed plans in one
// transaction. Rows that fail validation are reported and skipped; the
// remaining rows still commit.
package batchimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// UpdateMode selects which fields of an existing product a batch row may
// touch.
type UpdateMode string

const (
	ModeAddStock     UpdateMode = "add_stock"     // add quantity to current stock
	ModeReplaceStock UpdateMode = "replace_stock" // overwrite current stock
	ModeUpdatePrices UpdateMode = "update_prices" // prices only, stock untouched
	ModeFullUpdate   UpdateMode = "full_update"   // stock, prices, category, expiry, safety
)

// Valid reports whether m is one of the known modes.
func (m UpdateMode) Valid() bool {
	switch m {
	case ModeAddStock, ModeReplaceStock, ModeUpdatePrices, ModeFullUpdate:
		return true
	}
	return false
}

// Canonical column names and the header spellings that map onto them.
var headerAliases = map[string][]string{
	"name":          {"name", "product_name", "product", "item"},
	"category":      {"category", "type", "group"},
	"cost_price":    {"cost_price", "cost", "buy_price", "purchase_price"},
	"selling_price": {"selling_price", "sell_price", "price", "retail_price"},
	"quantity":      {"quantity", "stock", "qty", "amount"},
	"safety_stock":  {"safety_stock", "reorder_level", "minimum_stock"},
	"expiry_date":   {"expiry_date", "expiry", "expires"},
}

// Row is one spreadsheet row mapped to canonical column names. Num is the
// 1-based spreadsheet row number (header is row 1).
type Row struct {
	Num    int
	Values map[string]string
}

// Parse reads an uploaded spreadsheet. The filename extension picks the
// format: .csv is parsed directly, .xlsx/.xls through excelize.
func Parse(r io.Reader, filename string) ([]Row, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return parseCSV(r)
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q, want .csv, .xlsx or .xls", filename)
	}
}

func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return mapRecords(records)
}

func parseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return mapRecords(records)
}

// mapRecords resolves the header row through the alias table and maps every
// following row onto canonical column names. Unrecognized columns are
// dropped.
func mapRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	// column index -> canonical name; first alias hit per canonical wins
	columns := map[int]string{}
	claimed := map[string]bool{}
	for idx, header := range records[0] {
		h := strings.ToLower(strings.TrimSpace(header))
		for canonical, aliases := range headerAliases {
			if claimed[canonical] {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					columns[idx] = canonical
					claimed[canonical] = true
					break
				}
			}
		}
	}
	if !claimed["name"] {
		return nil, fmt.Errorf("no recognizable product name column (want one of: %s)", strings.Join(headerAliases["name"], ", "))
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		values := map[string]string{}
		empty := true
		for idx, canonical := range columns {
			if idx >= len(record) {
				continue
			}
			v := strings.TrimSpace(record[idx])
			values[canonical] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, Row{Num: i + 2, Values: values})
	}
	return rows, nil
}

// parseMoney parses a currency amount, tolerating a currency-symbol prefix
// and thousands separators ("GH₵1,250.00" -> 1250.00).
func parseMoney(s string) (decimal.Decimal, error) {
	cleaned := cleanNumber(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a valid amount", s)
	}
	return d, nil
}

// parseQty parses a whole quantity, tolerating separators and a trailing
// decimal part ("1,200" and "50.0" are both fine, "50.5" is not).
func parseQty(s string) (int, error) {
	cleaned := cleanNumber(s)
	if cleaned == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid number", s)
	}
	n := int(f)
	if f != float64(n) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

// cleanNumber strips currency symbols, thousands separators and spaces.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "GH₵")
	s = strings.TrimPrefix(s, "₵")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// Date layouts accepted for expiry columns.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006"}

// parseDate tries the accepted layouts in order.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognizable date", s)
}
