package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockline-app/stockline/internal/platform/db"
)

// ManualFilter narrows manual-product listings. Both fields compare
// case-insensitively; empty means no restriction.
type ManualFilter struct {
	SupplierName string
	Owner        string
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations of the all-or-nothing mirror
// rebuild.
type TxRepository interface {
	AssociationPairs(ctx context.Context) ([]MirrorRow, error)
	DeleteMirror(ctx context.Context) error
	InsertMirrorRow(ctx context.Context, row MirrorRow) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetSupplier fetches a supplier by ID.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	const query = `SELECT id, name, COALESCE(legacy_owner, '') FROM suppliers WHERE id = $1`
	var s Supplier
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.LegacyOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// GetSupplierByName fetches a supplier by display name, compared
// case-insensitively.
func (r *Repository) GetSupplierByName(ctx context.Context, name string) (Supplier, error) {
	const query = `SELECT id, name, COALESCE(legacy_owner, '') FROM suppliers WHERE LOWER(name) = LOWER($1)`
	var s Supplier
	err := r.pool.QueryRow(ctx, query, name).Scan(&s.ID, &s.Name, &s.LegacyOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	return s, err
}

// ListSuppliers returns all suppliers ordered by display name.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	const query = `SELECT id, name, COALESCE(legacy_owner, '') FROM suppliers ORDER BY name`
	return r.scanSuppliers(ctx, query)
}

// CreateSupplier inserts a supplier and returns its ID.
func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) (int64, error) {
	const query = `INSERT INTO suppliers (name, legacy_owner) VALUES ($1, NULLIF($2, '')) RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, s.Name, s.LegacyOwner).Scan(&id)
	return id, err
}

// DeleteSupplier removes a supplier by ID.
func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SuppliersWithoutOwners returns suppliers having no association row.
func (r *Repository) SuppliersWithoutOwners(ctx context.Context) ([]Supplier, error) {
	const query = `SELECT s.id, s.name, COALESCE(s.legacy_owner, '')
		FROM suppliers s
		LEFT JOIN supplier_owner_links l ON l.supplier_id = s.id
		WHERE l.supplier_id IS NULL
		ORDER BY s.name`
	return r.scanSuppliers(ctx, query)
}

// OrphanedAssociations returns links pointing at deleted suppliers.
func (r *Repository) OrphanedAssociations(ctx context.Context) ([]Association, error) {
	const query = `SELECT l.supplier_id, l.owner
		FROM supplier_owner_links l
		LEFT JOIN suppliers s ON s.id = l.supplier_id
		WHERE s.id IS NULL`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Association
	for rows.Next() {
		var a Association
		if err := rows.Scan(&a.SupplierID, &a.Owner); err != nil {
			return nil, err
		}
		links = append(links, a)
	}
	return links, rows.Err()
}

// AddAssociation inserts a supplier-owner pair, ignoring duplicates.
func (r *Repository) AddAssociation(ctx context.Context, supplierID int64, owner string) error {
	const query = `INSERT INTO supplier_owner_links (supplier_id, owner)
		VALUES ($1, $2)
		ON CONFLICT (supplier_id, owner) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, supplierID, owner)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}

// DeleteAssociation removes one supplier-owner pair.
func (r *Repository) DeleteAssociation(ctx context.Context, supplierID int64, owner string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM supplier_owner_links WHERE supplier_id = $1 AND owner = $2`,
		supplierID, owner)
	return err
}

// OwnersForSupplier returns all owner keys linked to the supplier.
func (r *Repository) OwnersForSupplier(ctx context.Context, supplierID int64) ([]string, error) {
	const query = `SELECT owner FROM supplier_owner_links WHERE supplier_id = $1 ORDER BY owner`
	rows, err := r.pool.Query(ctx, query, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// SuppliersForOwner returns the owner's suppliers ordered by display
// name.
func (r *Repository) SuppliersForOwner(ctx context.Context, owner string) ([]Supplier, error) {
	const query = `SELECT s.id, s.name, COALESCE(s.legacy_owner, '')
		FROM suppliers s
		JOIN supplier_owner_links l ON l.supplier_id = s.id
		WHERE LOWER(l.owner) = LOWER($1)
		ORDER BY s.name`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuppliers(rows)
}

// AssociationPairs joins associations with supplier display names.
func (r *Repository) AssociationPairs(ctx context.Context) ([]MirrorRow, error) {
	return associationPairs(ctx, r.pool)
}

// ListMirror returns the current legacy mirror contents.
func (r *Repository) ListMirror(ctx context.Context) ([]MirrorRow, error) {
	const query = `SELECT name, owner FROM legacy_owner_mirror ORDER BY name, owner`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMirrorRows(rows)
}

// DistinctOwnersForSupplierName scans manual products whose supplier
// name equals the given name case-insensitively and returns their
// distinct non-empty owners.
func (r *Repository) DistinctOwnersForSupplierName(ctx context.Context, name string) ([]string, error) {
	const query = `SELECT DISTINCT owner FROM manual_products
		WHERE LOWER(supplier_name) = LOWER($1) AND owner <> ''
		ORDER BY owner`
	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// InsertManualProduct stores a manually entered product.
func (r *Repository) InsertManualProduct(ctx context.Context, p ManualProduct) (int64, error) {
	const query = `INSERT INTO manual_products (code, name, price, supplier_name, owner, observations)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query, p.Code, p.Name, p.Price, p.SupplierName, p.Owner, p.Observations).Scan(&id)
	return id, err
}

// DeleteManualProduct removes one product by ID.
func (r *Repository) DeleteManualProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM manual_products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteManualProducts removes products in bulk.
func (r *Repository) DeleteManualProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM manual_products WHERE id = ANY($1)`, ids)
	return err
}

// ListManualProducts returns products matching the filter in insertion
// order.
func (r *Repository) ListManualProducts(ctx context.Context, filter ManualFilter) ([]ManualProduct, error) {
	query := `SELECT id, code, name, price, supplier_name, owner, observations
		FROM manual_products WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.SupplierName != "" {
		query += ` AND LOWER(supplier_name) = LOWER($` + itoa(argNum) + `)`
		args = append(args, filter.SupplierName)
		argNum++
	}
	if filter.Owner != "" {
		query += ` AND LOWER(owner) = LOWER($` + itoa(argNum) + `)`
		args = append(args, filter.Owner)
		argNum++
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ManualProduct
	for rows.Next() {
		var p ManualProduct
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.SupplierName, &p.Owner, &p.Observations); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) scanSuppliers(ctx context.Context, query string, args ...any) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuppliers(rows)
}

func collectSuppliers(rows pgx.Rows) ([]Supplier, error) {
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.LegacyOwner); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func collectMirrorRows(rows pgx.Rows) ([]MirrorRow, error) {
	var mirror []MirrorRow
	for rows.Next() {
		var row MirrorRow
		if err := rows.Scan(&row.Name, &row.Owner); err != nil {
			return nil, err
		}
		mirror = append(mirror, row)
	}
	return mirror, rows.Err()
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func associationPairs(ctx context.Context, q queryer) ([]MirrorRow, error) {
	const query = `SELECT s.name, l.owner
		FROM supplier_owner_links l
		JOIN suppliers s ON s.id = l.supplier_id
		ORDER BY s.name, l.owner`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMirrorRows(rows)
}

func (tx *txRepo) AssociationPairs(ctx context.Context) ([]MirrorRow, error) {
	return associationPairs(ctx, tx.tx)
}

func (tx *txRepo) DeleteMirror(ctx context.Context) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM legacy_owner_mirror`)
	return err
}

func (tx *txRepo) InsertMirrorRow(ctx context.Context, row MirrorRow) error {
	_, err := tx.tx.Exec(ctx,
		`INSERT INTO legacy_owner_mirror (name, owner) VALUES ($1, $2)`,
		row.Name, row.Owner)
	return err
}

// itoa converts int to string for dynamic query building.
func itoa(i int) string {
	return strconv.Itoa(i)
}
