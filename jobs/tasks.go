package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/stockline-app/stockline/internal/catalog"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskRepairOrphans sweeps association rows whose supplier was
	// deleted.
	TaskRepairOrphans = "catalog:repair_orphans"
	// TaskRepairMissing links ownerless suppliers to owners inferred
	// from manual products.
	TaskRepairMissing = "catalog:repair_missing"
	// TaskMirrorRebuild regenerates the legacy owner mirror.
	TaskMirrorRebuild = "catalog:mirror_rebuild"
	// TaskSheetWarm refreshes the cached price-list entries for every
	// configured supplier.
	TaskSheetWarm = "catalog:sheet_warm"
)

// MaintenanceTaskTypes lists every maintenance task accepted over the
// API.
var MaintenanceTaskTypes = []string{
	TaskRepairOrphans,
	TaskRepairMissing,
	TaskMirrorRebuild,
	TaskSheetWarm,
}

// NewMaintenanceTask constructs an Asynq task for a known maintenance
// task type.
func NewMaintenanceTask(taskType string) (*asynq.Task, error) {
	for _, known := range MaintenanceTaskTypes {
		if taskType == known {
			return asynq.NewTask(taskType, nil), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown maintenance task %q", catalog.ErrValidation, taskType)
}
