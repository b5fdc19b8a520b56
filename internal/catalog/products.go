package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ProductsPort describes repository operations used by Products.
type ProductsPort interface {
	GetSupplierByName(ctx context.Context, name string) (Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) (int64, error)
	AddAssociation(ctx context.Context, supplierID int64, owner string) error
	InsertManualProduct(ctx context.Context, p ManualProduct) (int64, error)
	DeleteManualProduct(ctx context.Context, id int64) error
	DeleteManualProducts(ctx context.Context, ids []int64) error
	ListManualProducts(ctx context.Context, filter ManualFilter) ([]ManualProduct, error)
}

// Products manages manually entered catalog rows. Rows are never
// updated in place: replacing one means deleting it and adding a new
// row.
type Products struct {
	repo   ProductsPort
	logger *slog.Logger
}

// NewProducts constructs the manual-product service.
func NewProducts(repo ProductsPort, logger *slog.Logger) *Products {
	if logger == nil {
		logger = slog.Default()
	}
	return &Products{repo: repo, logger: logger}
}

// Create stores a manual product. Referencing an unknown supplier name
// creates that supplier and, when the product carries an owner, links
// the two so the supplier is reachable from the owner's view.
func (p *Products) Create(ctx context.Context, product ManualProduct) (ManualProduct, error) {
	if strings.TrimSpace(product.Name) == "" {
		return ManualProduct{}, fmt.Errorf("%w: product name is required", ErrValidation)
	}

	if name := strings.TrimSpace(product.SupplierName); name != "" {
		if err := p.ensureSupplier(ctx, name, product.Owner); err != nil {
			return ManualProduct{}, err
		}
	}

	id, err := p.repo.InsertManualProduct(ctx, product)
	if err != nil {
		return ManualProduct{}, err
	}
	product.ID = id
	return product, nil
}

// Delete removes one manual product.
func (p *Products) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	return p.repo.DeleteManualProduct(ctx, id)
}

// BulkDelete removes manual products in bulk.
func (p *Products) BulkDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return ErrValidation
	}
	return p.repo.DeleteManualProducts(ctx, ids)
}

// List returns manual products matching the filter.
func (p *Products) List(ctx context.Context, filter ManualFilter) ([]ManualProduct, error) {
	return p.repo.ListManualProducts(ctx, filter)
}

func (p *Products) ensureSupplier(ctx context.Context, name, owner string) error {
	_, err := p.repo.GetSupplierByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	id, err := p.repo.CreateSupplier(ctx, Supplier{Name: name})
	if err != nil {
		return err
	}
	p.logger.Info("supplier created from manual reference", slog.String("name", name))
	if owner != "" {
		return p.repo.AddAssociation(ctx, id, owner)
	}
	return nil
}
