package repository

import (
	"database/sql"
	"time"

	"sprachtrainer/internal/database"
	"sprachtrainer/internal/models"
)

// checkpointRowID fixes the single-row id of task_sync_checkpoints.
const checkpointRowID = 1

// CheckpointRepository stores the process-wide sync cursor.
type CheckpointRepository struct {
	db *database.DB
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *database.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

// Get returns the stored checkpoint, or nil when no sync has completed yet.
func (r *CheckpointRepository) Get() (*models.SyncCheckpoint, error) {
	query := `
		SELECT last_synced_at, version_hash, updated_at
		FROM task_sync_checkpoints
		WHERE id = ?
	`

	cp := &models.SyncCheckpoint{}
	err := r.db.QueryRow(query, checkpointRowID).Scan(&cp.LastSyncedAt, &cp.VersionHash, &cp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// Set writes the checkpoint, creating the row on first sync.
func (r *CheckpointRepository) Set(cp *models.SyncCheckpoint) error {
	columns := []string{"id", "last_synced_at", "version_hash", "updated_at"}
	return r.db.Upsert("task_sync_checkpoints", "id", columns,
		checkpointRowID, cp.LastSyncedAt, cp.VersionHash, time.Now())
}
