package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stockline-app/stockline/internal/suppliers"
)

// DirSource loads a supplier's price list from a CSV file below a
// base directory, at <dir>/<folder>/<key>.csv. The folder segment is
// the supplier's storage-folder hint and may be empty.
type DirSource struct {
	Dir string
}

// Rows reads the supplier's CSV file into raw cells. Ragged rows are
// allowed; column mapping happens later against the header row.
func (s DirSource) Rows(ctx context.Context, cfg suppliers.Config) ([][]string, error) {
	path := filepath.Join(s.Dir, cfg.Folder, cfg.Key+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sheets: open price list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheets: read price list %s: %w", path, err)
	}
	return rows, nil
}
