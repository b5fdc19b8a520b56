package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// memoryRepo implements the repository ports against plain maps so the
// services can be exercised without PostgreSQL.
type memoryRepo struct {
	suppliers map[int64]Supplier
	links     []Association
	mirror    []MirrorRow
	products  []ManualProduct
	nextID    int64

	// mirrorFailAfter makes InsertMirrorRow fail once that many rows
	// were staged; -1 disables the fault.
	mirrorFailAfter int

	// failDeleteOwner / failAddOwner make the matching row operation
	// fail; empty disables the fault.
	failDeleteOwner string
	failAddOwner    string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		suppliers:       make(map[int64]Supplier),
		mirrorFailAfter: -1,
	}
}

func (r *memoryRepo) addSupplier(name string) int64 {
	r.nextID++
	r.suppliers[r.nextID] = Supplier{ID: r.nextID, Name: name}
	return r.nextID
}

func (r *memoryRepo) addProduct(p ManualProduct) {
	r.nextID++
	p.ID = r.nextID
	r.products = append(r.products, p)
}

type memoryTx struct {
	repo     *memoryRepo
	mirror   []MirrorRow
	inserted int
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, mirror: append([]MirrorRow(nil), r.mirror...)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.mirror = tx.mirror
	return nil
}

func (tx *memoryTx) AssociationPairs(ctx context.Context) ([]MirrorRow, error) {
	return tx.repo.AssociationPairs(ctx)
}

func (tx *memoryTx) DeleteMirror(ctx context.Context) error {
	tx.mirror = nil
	return nil
}

func (tx *memoryTx) InsertMirrorRow(ctx context.Context, row MirrorRow) error {
	if tx.repo.mirrorFailAfter >= 0 && tx.inserted >= tx.repo.mirrorFailAfter {
		return errors.New("disk full")
	}
	tx.inserted++
	tx.mirror = append(tx.mirror, row)
	return nil
}

func (r *memoryRepo) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) GetSupplierByName(ctx context.Context, name string) (Supplier, error) {
	for _, s := range r.suppliers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Supplier{}, ErrNotFound
}

func (r *memoryRepo) CreateSupplier(ctx context.Context, s Supplier) (int64, error) {
	r.nextID++
	s.ID = r.nextID
	r.suppliers[s.ID] = s
	return s.ID, nil
}

func (r *memoryRepo) SuppliersWithoutOwners(ctx context.Context) ([]Supplier, error) {
	linked := make(map[int64]bool)
	for _, l := range r.links {
		linked[l.SupplierID] = true
	}
	var out []Supplier
	for _, s := range r.suppliers {
		if !linked[s.ID] {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepo) OrphanedAssociations(ctx context.Context) ([]Association, error) {
	var out []Association
	for _, l := range r.links {
		if _, ok := r.suppliers[l.SupplierID]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryRepo) AddAssociation(ctx context.Context, supplierID int64, owner string) error {
	if r.failAddOwner != "" && owner == r.failAddOwner {
		return errors.New("connection reset")
	}
	if _, ok := r.suppliers[supplierID]; !ok {
		return ErrNotFound
	}
	for _, l := range r.links {
		if l.SupplierID == supplierID && l.Owner == owner {
			return nil
		}
	}
	r.links = append(r.links, Association{SupplierID: supplierID, Owner: owner})
	return nil
}

func (r *memoryRepo) DeleteAssociation(ctx context.Context, supplierID int64, owner string) error {
	if r.failDeleteOwner != "" && owner == r.failDeleteOwner {
		return errors.New("connection reset")
	}
	for i, l := range r.links {
		if l.SupplierID == supplierID && l.Owner == owner {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryRepo) OwnersForSupplier(ctx context.Context, supplierID int64) ([]string, error) {
	var out []string
	for _, l := range r.links {
		if l.SupplierID == supplierID {
			out = append(out, l.Owner)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memoryRepo) SuppliersForOwner(ctx context.Context, owner string) ([]Supplier, error) {
	var out []Supplier
	for _, l := range r.links {
		if strings.EqualFold(l.Owner, owner) {
			if s, ok := r.suppliers[l.SupplierID]; ok {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepo) AssociationPairs(ctx context.Context) ([]MirrorRow, error) {
	var out []MirrorRow
	for _, l := range r.links {
		if s, ok := r.suppliers[l.SupplierID]; ok {
			out = append(out, MirrorRow{Name: s.Name, Owner: l.Owner})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Owner < out[j].Owner
	})
	return out, nil
}

func (r *memoryRepo) DistinctOwnersForSupplierName(ctx context.Context, name string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.products {
		if strings.EqualFold(p.SupplierName, name) && p.Owner != "" && !seen[p.Owner] {
			seen[p.Owner] = true
			out = append(out, p.Owner)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memoryRepo) InsertManualProduct(ctx context.Context, p ManualProduct) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	r.products = append(r.products, p)
	return p.ID, nil
}

func (r *memoryRepo) DeleteManualProduct(ctx context.Context, id int64) error {
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepo) DeleteManualProducts(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		_ = r.DeleteManualProduct(ctx, id)
	}
	return nil
}

func (r *memoryRepo) ListManualProducts(ctx context.Context, filter ManualFilter) ([]ManualProduct, error) {
	var out []ManualProduct
	for _, p := range r.products {
		if filter.SupplierName != "" && !strings.EqualFold(p.SupplierName, filter.SupplierName) {
			continue
		}
		if filter.Owner != "" && !strings.EqualFold(p.Owner, filter.Owner) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
