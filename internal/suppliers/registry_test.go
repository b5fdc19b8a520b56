package suppliers

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(slog.Default(), []Config{
		{Key: "jeluz", Name: "JELUZ", Owner: "ferreteria_general", HeaderRow: 1,
			Columns: Columns{Code: []string{"codigo"}, Name: []string{"descripcion"}, Price: []string{"precio"}}},
		{Key: "sica", Name: "SICA", Owner: "electricidad"},
	})
}

func TestResolveExact(t *testing.T) {
	r := testRegistry(t)

	key, ok := r.Resolve("jeluz")
	require.True(t, ok)
	require.Equal(t, "jeluz", key)
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := testRegistry(t)

	key, ok := r.Resolve("JELUZ")
	require.True(t, ok)
	require.Equal(t, "jeluz", key)

	key, ok = r.Resolve("Sica")
	require.True(t, ok)
	require.Equal(t, "sica", key)
}

func TestResolveMiss(t *testing.T) {
	r := testRegistry(t)

	_, ok := r.Resolve("unknown")
	require.False(t, ok)

	_, ok = r.Resolve("")
	require.False(t, ok)
}

func TestResolveAmbiguousPicksFirst(t *testing.T) {
	r := NewRegistry(slog.Default(), []Config{
		{Key: "Jeluz", Name: "JELUZ"},
		{Key: "JELUZ", Name: "JELUZ SA"},
	})

	key, ok := r.Resolve("jeluz")
	require.True(t, ok)
	require.Equal(t, "Jeluz", key)
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suppliers.yaml")
	data := `suppliers:
  - key: jeluz
    name: JELUZ
    owner: ferreteria_general
    header_row: 2
    columns:
      code: [codigo, cod]
      name: [descripcion, detalle]
      price: [precio, importe]
    folder: listas/jeluz
  - key: sica
    owner: electricidad
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	r, err := Load(path, slog.Default())
	require.NoError(t, err)
	require.Equal(t, []string{"jeluz", "sica"}, r.Keys())

	cfg, ok := r.Get("jeluz")
	require.True(t, ok)
	require.Equal(t, "JELUZ", cfg.Name)
	require.Equal(t, 2, cfg.HeaderRow)
	require.Equal(t, []string{"codigo", "cod"}, cfg.Columns.Code)

	// Name falls back to the key when absent.
	cfg, ok = r.Get("sica")
	require.True(t, ok)
	require.Equal(t, "sica", cfg.Name)
}
