package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/stockline-app/stockline/internal/catalog"
	"github.com/stockline-app/stockline/internal/sheets"
	"github.com/stockline-app/stockline/internal/suppliers"
)

// warmConcurrency bounds the parallel sheet loads during a warm run.
const warmConcurrency = 4

// Maintenance bundles the catalog services executed by background
// tasks.
type Maintenance struct {
	associations *catalog.Associations
	registry     *suppliers.Registry
	source       catalog.SheetSource
	cache        *catalog.SheetCache
	logger       *slog.Logger
}

// NewMaintenance constructs the maintenance task handlers.
func NewMaintenance(associations *catalog.Associations, registry *suppliers.Registry, source catalog.SheetSource, cache *catalog.SheetCache, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{
		associations: associations,
		registry:     registry,
		source:       source,
		cache:        cache,
		logger:       logger,
	}
}

// Handlers returns the Asynq handler registrations.
func (m *Maintenance) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskRepairOrphans, Handler: m.handleRepairOrphans},
		{Type: TaskRepairMissing, Handler: m.handleRepairMissing},
		{Type: TaskMirrorRebuild, Handler: m.handleMirrorRebuild},
		{Type: TaskSheetWarm, Handler: m.handleSheetWarm},
	}
}

func (m *Maintenance) handleRepairOrphans(ctx context.Context, t *asynq.Task) error {
	report, err := m.associations.RepairOrphans(ctx)
	if err != nil {
		return err
	}
	m.logger.Info("orphan sweep finished",
		slog.Int("removed", report.Removed),
		slog.Int("row_errors", len(report.Errors)))
	for _, rowErr := range report.Errors {
		m.logger.Warn("orphan sweep row", slog.String("detail", rowErr))
	}
	return nil
}

func (m *Maintenance) handleRepairMissing(ctx context.Context, t *asynq.Task) error {
	report, err := m.associations.RepairMissing(ctx)
	if err != nil {
		return err
	}
	m.logger.Info("missing-association repair finished",
		slog.Int("added", report.Added),
		slog.Int("defaulted", len(report.Defaulted)),
		slog.Int("row_errors", len(report.Errors)))
	for _, rowErr := range report.Errors {
		m.logger.Warn("missing-association row", slog.String("detail", rowErr))
	}
	return nil
}

func (m *Maintenance) handleMirrorRebuild(ctx context.Context, t *asynq.Task) error {
	if err := m.associations.RebuildLegacyMirror(ctx); err != nil {
		m.logger.Error("mirror rebuild failed", slog.Any("error", err))
		return err
	}
	m.logger.Info("legacy mirror rebuilt")
	return nil
}

// handleSheetWarm refreshes every supplier's cached entries. A
// supplier whose sheet cannot be loaded is logged and skipped; a warm
// run never fails the whole task over one supplier.
func (m *Maintenance) handleSheetWarm(ctx context.Context, t *asynq.Task) error {
	if m.source == nil || m.cache == nil {
		return asynq.SkipRetry
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, key := range m.registry.Keys() {
		cfg, ok := m.registry.Get(key)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := m.cache.Invalidate(ctx, key); err != nil {
				m.logger.Warn("sheet warm invalidate",
					slog.String("supplier", key),
					slog.Any("error", err))
			}
			entries, err := m.cache.Fetch(ctx, key, func(ctx context.Context) ([]sheets.Entry, error) {
				rows, err := m.source.Rows(ctx, cfg)
				if err != nil {
					return nil, err
				}
				return sheets.Ingest(rows, cfg), nil
			})
			if err != nil {
				m.logger.Warn("sheet warm skipped supplier",
					slog.String("supplier", key),
					slog.Any("error", err))
				return nil
			}
			m.logger.Info("sheet warmed",
				slog.String("supplier", key),
				slog.Int("entries", len(entries)))
			return nil
		})
	}
	return g.Wait()
}
