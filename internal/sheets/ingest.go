// Package sheets turns one supplier's raw price-list rows into
// normalized entries using the supplier's declarative column mapping.
package sheets

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockline-app/stockline/internal/price"
	"github.com/stockline-app/stockline/internal/suppliers"
)

// Entry is one normalized price-list row. It only exists for the
// duration of a search and is never persisted.
type Entry struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	PriceRaw string          `json:"price_raw,omitempty"`
	PriceErr string          `json:"price_err,omitempty"`
	Supplier string          `json:"supplier"`
	Owner    string          `json:"owner"`
}

// columnMap holds the resolved cell index per logical field, -1 when
// the header declares no matching column.
type columnMap struct {
	code  int
	name  int
	price int
}

// Ingest converts raw rows into entries. It is a pure function of its
// two inputs: rows before cfg.HeaderRow are skipped, the header row is
// scanned for the first cell matching any configured alias per field,
// and each later non-empty row yields one entry. Supplier name and
// owner always come from the configuration, never from the sheet.
func Ingest(rows [][]string, cfg suppliers.Config) []Entry {
	if cfg.HeaderRow < 0 || cfg.HeaderRow >= len(rows) {
		return nil
	}

	cols := mapColumns(rows[cfg.HeaderRow], cfg.Columns)

	var entries []Entry
	for _, row := range rows[cfg.HeaderRow+1:] {
		if emptyRow(row) {
			continue
		}
		rawPrice := cell(row, cols.price)
		value, errMsg := price.Parse(rawPrice)

		entry := Entry{
			Code:     cell(row, cols.code),
			Name:     cell(row, cols.name),
			Price:    value,
			Supplier: cfg.Name,
			Owner:    cfg.Owner,
		}
		if errMsg != "" && rawPrice != "" {
			entry.PriceRaw = rawPrice
			entry.PriceErr = errMsg
		}
		entries = append(entries, entry)
	}
	return entries
}

// mapColumns finds the first header cell matching any alias of each
// field, case-insensitively. Missing fields map to -1 and downstream
// entries carry empty values for them.
func mapColumns(header []string, columns suppliers.Columns) columnMap {
	return columnMap{
		code:  findColumn(header, columns.Code),
		name:  findColumn(header, columns.Name),
		price: findColumn(header, columns.Price),
	}
}

func findColumn(header []string, aliases []string) int {
	for i, cellText := range header {
		text := strings.TrimSpace(cellText)
		for _, alias := range aliases {
			if strings.EqualFold(text, alias) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
