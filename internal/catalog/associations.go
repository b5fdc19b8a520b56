package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// AssociationsPort describes repository operations used by
// Associations.
type AssociationsPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	SuppliersWithoutOwners(ctx context.Context) ([]Supplier, error)
	OrphanedAssociations(ctx context.Context) ([]Association, error)
	AddAssociation(ctx context.Context, supplierID int64, owner string) error
	DeleteAssociation(ctx context.Context, supplierID int64, owner string) error
	OwnersForSupplier(ctx context.Context, supplierID int64) ([]string, error)
	SuppliersForOwner(ctx context.Context, owner string) ([]Supplier, error)
	DistinctOwnersForSupplierName(ctx context.Context, name string) ([]string, error)
}

// Associations owns the supplier-owner relation and the legacy owner
// mirror derived from it.
type Associations struct {
	repo         AssociationsPort
	defaultOwner string
	logger       *slog.Logger
}

// NewAssociations constructs the association service. defaultOwner
// receives suppliers that a repair sweep cannot link to any owner.
func NewAssociations(repo AssociationsPort, defaultOwner string, logger *slog.Logger) *Associations {
	if logger == nil {
		logger = slog.Default()
	}
	return &Associations{repo: repo, defaultOwner: defaultOwner, logger: logger}
}

// OwnersForSupplier returns the owner keys linked to the supplier.
func (a *Associations) OwnersForSupplier(ctx context.Context, supplierID int64) ([]string, error) {
	if supplierID <= 0 {
		return nil, ErrValidation
	}
	return a.repo.OwnersForSupplier(ctx, supplierID)
}

// SuppliersForOwner returns the owner's suppliers ordered by display
// name.
func (a *Associations) SuppliersForOwner(ctx context.Context, owner string) ([]Supplier, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrValidation
	}
	return a.repo.SuppliersForOwner(ctx, owner)
}

// AddAssociation links a supplier to an owner. Inserting an existing
// pair is a no-op.
func (a *Associations) AddAssociation(ctx context.Context, supplierID int64, owner string) error {
	if supplierID <= 0 || strings.TrimSpace(owner) == "" {
		return ErrValidation
	}
	return a.repo.AddAssociation(ctx, supplierID, owner)
}

// RepairOrphans removes association rows whose supplier no longer
// exists. Row failures are collected, not fatal: partial repair beats
// no repair.
func (a *Associations) RepairOrphans(ctx context.Context) (OrphanReport, error) {
	orphans, err := a.repo.OrphanedAssociations(ctx)
	if err != nil {
		return OrphanReport{}, err
	}

	var report OrphanReport
	for _, link := range orphans {
		if err := a.repo.DeleteAssociation(ctx, link.SupplierID, link.Owner); err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("supplier %d owner %s: %v", link.SupplierID, link.Owner, err))
			continue
		}
		report.Removed++
	}
	return report, nil
}

// RepairMissing links every ownerless supplier to the owners found on
// its manual products, falling back to the default owner so that each
// supplier stays reachable from at least one owner's view.
func (a *Associations) RepairMissing(ctx context.Context) (MissingReport, error) {
	suppliers, err := a.repo.SuppliersWithoutOwners(ctx)
	if err != nil {
		return MissingReport{}, err
	}

	var report MissingReport
	for _, s := range suppliers {
		owners, err := a.repo.DistinctOwnersForSupplierName(ctx, s.Name)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("supplier %s: %v", s.Name, err))
			continue
		}
		if len(owners) == 0 {
			owners = []string{a.defaultOwner}
			report.Defaulted = append(report.Defaulted, s.Name)
			a.logger.Warn("supplier assigned to default owner",
				slog.String("supplier", s.Name),
				slog.String("owner", a.defaultOwner))
		}
		for _, owner := range owners {
			if err := a.repo.AddAssociation(ctx, s.ID, owner); err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("supplier %s owner %s: %v", s.Name, owner, err))
				continue
			}
			report.Added++
		}
	}
	return report, nil
}

// RebuildLegacyMirror replaces the legacy owner mirror with a fresh
// projection of the association table. The delete and every insert run
// in one transaction; any failure rolls the whole rebuild back, since
// a partial mirror would silently hide suppliers from the legacy read
// path.
func (a *Associations) RebuildLegacyMirror(ctx context.Context) error {
	return a.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		pairs, err := tx.AssociationPairs(ctx)
		if err != nil {
			return fmt.Errorf("catalog: read associations: %w", err)
		}
		if err := tx.DeleteMirror(ctx); err != nil {
			return fmt.Errorf("catalog: clear mirror: %w", err)
		}
		for _, row := range pairs {
			if err := tx.InsertMirrorRow(ctx, row); err != nil {
				return fmt.Errorf("catalog: mirror row %s/%s: %w", row.Name, row.Owner, err)
			}
		}
		return nil
	})
}
