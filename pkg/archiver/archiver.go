package archiver

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
)

// tablePair describes a live table and its archive shadow. The archive
// table carries the same columns plus archived_at, so moved.* lines up.
type tablePair struct {
	live      string
	archive   string
	ageColumn string

	// extraWhere further restricts which rows may be moved
	extraWhere string
}

var tables = []tablePair{
	{live: "drone_statuses", archive: "drone_statuses_archive", ageColumn: "recorded_at"},
	{live: "drone_positions", archive: "drone_positions_archive", ageColumn: "recorded_at"},
	// Commands only leave the live table once they reach a terminal state
	{live: "drone_commands", archive: "drone_commands_archive", ageColumn: "issued_at",
		extraWhere: "AND status IN ('completed', 'failed')"},
}

// Archiver moves aged telemetry rows into the archive tables on an interval
type Archiver struct {
	db        *gorm.DB
	retention time.Duration
	batchSize int
	interval  time.Duration
}

// New creates an archiver configured from the retention settings
func New(db *gorm.DB, cfg *config.AiotConfig) *Archiver {
	return &Archiver{
		db:        db,
		retention: time.Duration(cfg.ArchiveRetentionDays) * 24 * time.Hour,
		batchSize: cfg.ArchiveBatchSize,
		interval:  cfg.ArchiveRunInterval(),
	}
}

// Run archives immediately and then on every interval tick until ctx is
// cancelled
func (a *Archiver) Run(ctx context.Context) {
	a.RunOnce()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.RunOnce()
		}
	}
}

// RunOnce performs a single archive pass over all table pairs
func (a *Archiver) RunOnce() {
	logger := log.WithComponent("archiver")
	cutoff := time.Now().UTC().Add(-a.retention)

	failed := false
	for _, pair := range tables {
		moved, err := a.archiveTable(pair, cutoff)

		event := audit.ArchiveEvent{Table: pair.live, RowsMoved: moved, Success: err == nil}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.Log(event)

		if err != nil {
			failed = true
			logger.Error().Err(err).Str("table", pair.live).Msg("archive pass failed")
			continue
		}
		if moved > 0 {
			logger.Info().Str("table", pair.live).Int64("rows", moved).Msg("archived rows")
		}
	}

	if failed {
		metrics.ArchiveRunsTotal.WithLabelValues("error").Inc()
	} else {
		metrics.ArchiveRunsTotal.WithLabelValues("ok").Inc()
	}
}

// archiveTable drains aged rows from one table in batches. Each batch is a
// single statement, so a crash between batches never loses rows.
func (a *Archiver) archiveTable(pair tablePair, cutoff time.Time) (int64, error) {
	var total int64
	for {
		moved, err := a.archiveBatch(pair, cutoff)
		if err != nil {
			return total, err
		}
		total += moved
		metrics.ArchivedRowsTotal.WithLabelValues(pair.live).Add(float64(moved))

		if moved < int64(a.batchSize) {
			return total, nil
		}
	}
}

func (a *Archiver) archiveBatch(pair tablePair, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`
		WITH moved AS (
			DELETE FROM %s
			WHERE id IN (
				SELECT id FROM %s
				WHERE %s < ? %s
				ORDER BY %s
				LIMIT ?
			)
			RETURNING *
		)
		INSERT INTO %s SELECT moved.*, NOW() FROM moved`,
		pair.live, pair.live, pair.ageColumn, pair.extraWhere, pair.ageColumn, pair.archive)

	tx := a.db.Exec(query, cutoff, a.batchSize)
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to archive %s: %w", pair.live, tx.Error)
	}
	return tx.RowsAffected, nil
}
