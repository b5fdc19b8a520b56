// Package catalog reconciles supplier price lists with manually
// entered products and answers multi-token catalog searches scoped by
// owner.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Provenance marks the source a search result came from.
type Provenance string

const (
	ProvenanceManual Provenance = "manual"
	ProvenanceSheet  Provenance = "sheet-derived"
)

// Supplier is a vendor referenced by price lists and manual products.
// Names are display-cased and compared case-insensitively.
type Supplier struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	LegacyOwner string `json:"legacy_owner,omitempty"`
}

// ManualProduct is a catalog entry typed in by a user. SupplierName is
// free text, not a foreign key. Price is kept as raw text so that an
// unparseable value survives for auditing.
type ManualProduct struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	SupplierName string `json:"supplier_name"`
	Owner        string `json:"owner"`
	Observations string `json:"observations"`
}

// Association links a supplier to an owner. Pairs are unique.
type Association struct {
	SupplierID int64  `json:"supplier_id"`
	Owner      string `json:"owner"`
}

// MirrorRow is one denormalized row of the legacy owner mirror. The
// mirror is a pure projection of the association table and is only
// ever rebuilt wholesale.
type MirrorRow struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// Result is one search hit. PriceRaw is set only when the price could
// not be parsed; the numeric value is then zero.
type Result struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	PriceRaw     string          `json:"price_raw,omitempty"`
	Supplier     string          `json:"supplier"`
	Observations string          `json:"observations"`
	Owner        string          `json:"owner"`
	Provenance   Provenance      `json:"provenance"`
}

// OrphanReport summarizes an orphaned-association sweep.
type OrphanReport struct {
	Removed int      `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// MissingReport summarizes a missing-association repair.
type MissingReport struct {
	Added     int      `json:"added"`
	Defaulted []string `json:"defaulted,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("catalog: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("catalog: invalid input")
)
