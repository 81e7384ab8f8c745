package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"FxSignals/internal/domain/models"
	"FxSignals/internal/domain/repository"
)

// ClickHouseArchive appends one row per terminal outcome.
type ClickHouseArchive struct {
	db       *sql.DB
	database string
	table    string
}

// NewClickHouseArchive writes to database.table.
func NewClickHouseArchive(db *sql.DB, database, table string) *ClickHouseArchive {
	return &ClickHouseArchive{db: db, database: database, table: table}
}

// SchemaStatements returns the idempotent DDL for the archive table.
func (a *ClickHouseArchive) SchemaStatements() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", a.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	finished_at DateTime64(3, 'UTC'),
	submission_id String,
	phase LowCardinality(String),
	symbol String,
	start_date String,
	end_date String,
	threshold Float64,
	shape LowCardinality(String),
	points UInt32,
	last_decision LowCardinality(String),
	sharpe_ratio Nullable(Float64),
	cumulative_returns Nullable(Float64),
	error_kind LowCardinality(String),
	error_message String,
	http_status UInt16,
	duration_ms UInt64,
	view String
) ENGINE = MergeTree ORDER BY (symbol, finished_at)`, a.qualified()),
	}
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	for _, stmt := range a.SchemaStatements() {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
	}
	return nil
}

func (a *ClickHouseArchive) Append(ctx context.Context, o models.Outcome) error {
	args, err := archiveRow(o)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (finished_at, submission_id, phase, symbol, start_date, end_date, threshold,
	shape, points, last_decision, sharpe_ratio, cumulative_returns, error_kind, error_message, http_status,
	duration_ms, view) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.qualified())
	if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Close leaves the pool open; it belongs to the ClickHouse client.
func (a *ClickHouseArchive) Close() error {
	return nil
}

func (a *ClickHouseArchive) qualified() string {
	return a.database + "." + a.table
}

// archiveRow flattens an outcome into insert arguments in column order.
func archiveRow(o models.Outcome) ([]interface{}, error) {
	var (
		symbol, start, end    string
		threshold             float64
		shape, decision, view string
		points                uint32
		sharpe, returns       *float64
		errKind, errMsg       string
		status                uint16
	)

	if p := o.Parameters; p != nil {
		symbol, start, end, threshold = p.Symbol, p.StartDate, p.EndDate, p.Threshold
	}
	if vm := o.View; vm != nil {
		shape = string(vm.Shape())
		points = uint32(vm.Len())
		if d, ok := vm.Decision(); ok {
			decision = string(d)
		}
		if m, ok := vm.Metrics(); ok {
			sharpe, returns = &m.SharpeRatio, &m.CumulativeReturns
		}
		b, err := json.Marshal(vm)
		if err != nil {
			return nil, fmt.Errorf("encode view: %w", err)
		}
		view = string(b)
	}
	if f := o.Failure; f != nil {
		errKind, errMsg, status = string(f.Kind), f.Message, uint16(f.Status)
	}

	return []interface{}{
		o.FinishedAt,
		o.SubmissionID,
		string(o.Phase),
		symbol,
		start,
		end,
		threshold,
		shape,
		points,
		decision,
		sharpe,
		returns,
		errKind,
		errMsg,
		status,
		uint64(o.DurationMs),
		view,
	}, nil
}

var _ repository.RunArchive = (*ClickHouseArchive)(nil)
