package catalog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockline-app/stockline/internal/suppliers"
)

type stubSheets struct {
	rows map[string][][]string
}

func (s *stubSheets) Rows(ctx context.Context, cfg suppliers.Config) ([][]string, error) {
	return s.rows[cfg.Key], nil
}

func searchFixture(t *testing.T) (*Search, *memoryRepo, *stubSheets) {
	t.Helper()
	registry := suppliers.NewRegistry(slog.Default(), []suppliers.Config{
		{Key: "jeluz", Name: "JELUZ", Owner: "ferreteria_general", HeaderRow: 0,
			Columns: suppliers.Columns{
				Code:  []string{"codigo"},
				Name:  []string{"descripcion"},
				Price: []string{"precio"},
			}},
		{Key: "sica", Name: "SICA", Owner: "electricidad", HeaderRow: 0,
			Columns: suppliers.Columns{
				Code:  []string{"codigo"},
				Name:  []string{"descripcion"},
				Price: []string{"precio"},
			}},
	})
	repo := newMemoryRepo()
	source := &stubSheets{rows: make(map[string][][]string)}
	return NewSearch(registry, repo, source, nil, slog.Default()), repo, source
}

func TestSearchManualProductWithFilterAndOwner(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	repo.addProduct(ManualProduct{
		Code: "TERM32A", Name: "TERMICA 32A JELUZ", Price: "5000",
		SupplierName: "JELUZ", Owner: "ferreteria_general",
	})

	results, err := svc.Search(context.Background(), SearchQuery{
		Text: "TERM32A", Supplier: "JELUZ", Owner: "ferreteria_general",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, decimal.NewFromInt(5000).Equal(results[0].Price))
	require.Empty(t, results[0].PriceRaw)
	require.Equal(t, ProvenanceManual, results[0].Provenance)
}

func TestSearchFilterIsCaseInsensitive(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	repo.addProduct(ManualProduct{
		Code: "TERM32A", Name: "TERMICA 32A JELUZ", Price: "5000",
		SupplierName: "JELUZ", Owner: "ferreteria_general",
	})

	upper, err := svc.Search(context.Background(), SearchQuery{Text: "TERM32A", Supplier: "JELUZ"})
	require.NoError(t, err)
	lower, err := svc.Search(context.Background(), SearchQuery{Text: "TERM32A", Supplier: "jeluz"})
	require.NoError(t, err)
	require.Equal(t, upper, lower)
	require.Len(t, lower, 1)
}

func TestSearchUnknownFilterBehavesAsNoFilter(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	repo.addProduct(ManualProduct{Name: "CINTA AISLADORA", Price: "350", SupplierName: "TACSA", Owner: "ferreteria_general"})
	repo.addProduct(ManualProduct{Name: "PILA AA", Price: "200", SupplierName: "ENERGIZER", Owner: "electricidad"})

	unfiltered, err := svc.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	unknown, err := svc.Search(context.Background(), SearchQuery{Supplier: "noexiste"})
	require.NoError(t, err)
	require.Equal(t, unfiltered, unknown)
	require.Len(t, unknown, 2)
}

func TestSearchFallbackDropsSupplierRestriction(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	// The product is misfiled under a label that is not the resolved
	// supplier's display name.
	repo.addProduct(ManualProduct{
		Code: "TERM32A", Name: "TERMICA 32A", Price: "5000",
		SupplierName: "JELUZ S.A.", Owner: "ferreteria_general",
	})

	results, err := svc.Search(context.Background(), SearchQuery{
		Text: "TERM32A", Supplier: "jeluz", Owner: "ferreteria_general",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "JELUZ S.A.", results[0].Supplier)
}

func TestSearchFilterWithNoMatchesReturnsEmpty(t *testing.T) {
	svc, _, _ := searchFixture(t)

	results, err := svc.Search(context.Background(), SearchQuery{
		Text: "loquesea", Supplier: "sica", Owner: "electricidad",
	})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchMergesSheetAndManualRows(t *testing.T) {
	svc, repo, source := searchFixture(t)
	source.rows["jeluz"] = [][]string{
		{"Codigo", "Descripcion", "Precio"},
		{"TERM32A", "TERMICA 32A", "$1.500,50"},
		{"TERM63A", "TERMICA 63A", "consultar"},
	}
	repo.addProduct(ManualProduct{
		Code: "TERM32A", Name: "TERMICA 32A VIEJA", Price: "texto",
		SupplierName: "JELUZ", Owner: "ferreteria_general",
	})

	results, err := svc.Search(context.Background(), SearchQuery{Text: "termica", Supplier: "jeluz"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Sheet rows come first, in sheet order.
	require.Equal(t, ProvenanceSheet, results[0].Provenance)
	require.Equal(t, "JELUZ", results[0].Supplier)
	require.Equal(t, "ferreteria_general", results[0].Owner)
	require.True(t, decimal.RequireFromString("1500.50").Equal(results[0].Price))

	// Unparseable sheet price keeps its raw text.
	require.True(t, results[1].Price.IsZero())
	require.Equal(t, "consultar", results[1].PriceRaw)

	// Manual row with a broken price is tagged for review.
	require.Equal(t, ProvenanceManual, results[2].Provenance)
	require.True(t, results[2].Price.IsZero())
	require.Equal(t, "texto", results[2].PriceRaw)
}

func TestSearchTokensAreConjunctiveAcrossFields(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	repo.addProduct(ManualProduct{Code: "TERM32A", Name: "TERMICA 32A", Price: "5000", SupplierName: "JELUZ", Owner: "ferreteria_general"})
	repo.addProduct(ManualProduct{Code: "LLV10", Name: "LLAVE 10A", Price: "980", SupplierName: "JELUZ", Owner: "ferreteria_general"})

	// One token matches the name, the other the supplier field.
	results, err := svc.Search(context.Background(), SearchQuery{Text: "termica jeluz"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "TERM32A", results[0].Code)

	// A token matching nothing filters everything out.
	results, err = svc.Search(context.Background(), SearchQuery{Text: "termica inexistente"})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchEmptyTextRetainsAll(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	repo.addProduct(ManualProduct{Name: "UNO", Price: "1", Owner: "a"})
	repo.addProduct(ManualProduct{Name: "DOS", Price: "2", Owner: "b"})

	results, err := svc.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearchOwnerScopeRestrictsResults(t *testing.T) {
	svc, repo, _ := searchFixture(t)
	repo.addProduct(ManualProduct{Name: "CINTA", Price: "350", Owner: "ferreteria_general"})
	repo.addProduct(ManualProduct{Name: "CINTA", Price: "400", Owner: "electricidad"})

	results, err := svc.Search(context.Background(), SearchQuery{Owner: "electricidad"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "electricidad", results[0].Owner)
}
