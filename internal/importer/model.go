// Package importer reconciles uploaded files into the database: trip/order
// files into trips with member orders, entity files into the reference
// tables. Every batch leaves an import-history record.
package importer

import (
	"time"

	"github.com/google/uuid"

	"github.com/youssef-benmansour/fuel-vivo/internal/orders"
)

// Row is a parsed upload row keyed by cleaned column header.
type Row = orders.Row

// Import outcome statuses recorded in history.
const (
	StatusCompleted  = "completed"
	StatusPartial    = "completed_with_errors"
	StatusFailed     = "failed"
	historyRetention = 20
	maxErrorDetails  = 10
)

// ImportRecord is one history row per import batch. The table keeps the
// newest twenty records; older rows are evicted after every insert.
type ImportRecord struct {
	ID              int64          `json:"id" db:"id"`
	BatchID         uuid.UUID      `json:"batch_id" db:"batch_id"`
	ImportType      string         `json:"import_type" db:"import_type"`
	FileName        string         `json:"file_name" db:"file_name"`
	RecordsImported int            `json:"records_imported" db:"records_imported"`
	Status          string         `json:"status" db:"status"`
	Details         map[string]any `json:"details" db:"details"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// ReconcileResult is the response of a trip/order reconciliation batch. The
// counts are always present, even when every group failed.
type ReconcileResult struct {
	BatchID uuid.UUID `json:"batch_id"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	Deleted int       `json:"deleted"`
	Errors  []string  `json:"errors"`
}

// EntityResult is the response of an entity import.
type EntityResult struct {
	BatchID uuid.UUID `json:"batch_id"`
	Type    string    `json:"type"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	Wiped   int64     `json:"wiped"`
	Errors  []string  `json:"errors"`
}
