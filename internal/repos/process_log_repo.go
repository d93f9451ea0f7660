package repos

import (
	"context"

	"studioapi/internal/domain"
)

const processLogsTable = "process_logs"

type ProcessLogRepo struct{ DB *DB }

func NewProcessLogRepo(db *DB) *ProcessLogRepo { return &ProcessLogRepo{DB: db} }

// Append writes the record immediately, one insert per call. Write errors are
// swallowed by InsertRow and only show up in the logs and WriteFailures.
func (r *ProcessLogRepo) Append(ctx context.Context, p domain.ProcessLog) {
	r.DB.InsertRow(ctx, processLogsTable, p.Fields())
}
