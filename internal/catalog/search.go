package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stockline-app/stockline/internal/price"
	"github.com/stockline-app/stockline/internal/sheets"
	"github.com/stockline-app/stockline/internal/suppliers"
)

// SheetSource supplies the raw rows of a supplier's price list. The
// engine never reads files itself; an external collaborator loads the
// spreadsheet and hands the rows over.
type SheetSource interface {
	Rows(ctx context.Context, cfg suppliers.Config) ([][]string, error)
}

// SearchPort describes the manual-product lookups used by Search.
type SearchPort interface {
	ListManualProducts(ctx context.Context, filter ManualFilter) ([]ManualProduct, error)
}

// SearchQuery carries the caller's free-text query and optional
// filters.
type SearchQuery struct {
	Text     string
	Supplier string
	Owner    string
}

// Search merges normalized price-list entries with manually entered
// products. It is stateless across calls.
type Search struct {
	registry *suppliers.Registry
	repo     SearchPort
	source   SheetSource
	cache    *SheetCache
	logger   *slog.Logger
}

// NewSearch constructs the search aggregator. cache may be nil.
func NewSearch(registry *suppliers.Registry, repo SearchPort, source SheetSource, cache *SheetCache, logger *slog.Logger) *Search {
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{registry: registry, repo: repo, source: source, cache: cache, logger: logger}
}

// Search answers a free-text, multi-token query.
//
// A supplier filter that does not resolve in the registry is dropped
// rather than reported: queries degrade, they do not error. When a
// resolved filter yields no results at all, the supplier-name
// restriction on manual products is dropped too, keeping only the
// owner scope, so a filter can narrow results but never hide a product
// recorded under a slightly different supplier label.
func (s *Search) Search(ctx context.Context, q SearchQuery) ([]Result, error) {
	var (
		entries  []sheets.Entry
		manual   []ManualProduct
		filtered bool
		err      error
	)

	if q.Supplier != "" {
		if key, ok := s.registry.Resolve(q.Supplier); ok {
			filtered = true
			cfg, _ := s.registry.Get(key)
			entries = s.sheetEntries(ctx, key, cfg)
			manual, err = s.repo.ListManualProducts(ctx, ManualFilter{SupplierName: cfg.Name, Owner: q.Owner})
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 && len(manual) == 0 {
				manual, err = s.repo.ListManualProducts(ctx, ManualFilter{Owner: q.Owner})
				if err != nil {
					return nil, err
				}
			}
		} else {
			s.logger.Warn("supplier filter not in registry, ignoring",
				slog.String("supplier", q.Supplier))
		}
	}
	if !filtered {
		manual, err = s.repo.ListManualProducts(ctx, ManualFilter{Owner: q.Owner})
		if err != nil {
			return nil, err
		}
	}

	tokens := strings.Fields(q.Text)

	results := make([]Result, 0, len(entries)+len(manual))
	for _, e := range entries {
		if !matchTokens(tokens, e.Name, e.Code, e.Supplier) {
			continue
		}
		results = append(results, Result{
			Code:       e.Code,
			Name:       e.Name,
			Price:      e.Price,
			PriceRaw:   e.PriceRaw,
			Supplier:   e.Supplier,
			Owner:      e.Owner,
			Provenance: ProvenanceSheet,
		})
	}
	for _, p := range manual {
		if !matchTokens(tokens, p.Name, p.Code, p.SupplierName) {
			continue
		}
		value, errMsg := price.Parse(p.Price)
		r := Result{
			Code:         p.Code,
			Name:         p.Name,
			Price:        value,
			Supplier:     p.SupplierName,
			Observations: p.Observations,
			Owner:        p.Owner,
			Provenance:   ProvenanceManual,
		}
		if errMsg != "" {
			r.PriceRaw = p.Price
		}
		results = append(results, r)
	}
	return results, nil
}

// sheetEntries ingests the supplier's sheet, going through the cache
// when one is configured. A sheet that cannot be loaded contributes no
// entries; the search goes on with manual products only.
func (s *Search) sheetEntries(ctx context.Context, key string, cfg suppliers.Config) []sheets.Entry {
	if s.source == nil {
		return nil
	}
	loader := func(ctx context.Context) ([]sheets.Entry, error) {
		rows, err := s.source.Rows(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sheets.Ingest(rows, cfg), nil
	}

	entries, err := s.cache.Fetch(ctx, key, loader)
	if err != nil {
		s.logger.Warn("price list unavailable",
			slog.String("supplier", key),
			slog.Any("error", err))
		return nil
	}
	return entries
}

// matchTokens retains a record only when every token is a
// case-insensitive substring of at least one of the given fields.
func matchTokens(tokens []string, fields ...string) bool {
	if len(tokens) == 0 {
		return true
	}
	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}
	for _, token := range tokens {
		token = strings.ToLower(token)
		found := false
		for _, f := range lowered {
			if strings.Contains(f, token) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
