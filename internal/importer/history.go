package importer

import (
	"context"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
	"github.com/youssef-benmansour/fuel-vivo/internal/shared"
)

// HistoryRepository persists the import-history log.
type HistoryRepository interface {
	Insert(ctx context.Context, rec *ImportRecord) error
	Trim(ctx context.Context, keep int) (int64, error)
	List(ctx context.Context, page shared.Page) ([]ImportRecord, int64, error)
}

type historyRepository struct {
	db masterdata.DBTX
}

// NewHistoryRepository constructs a HistoryRepository over db.
func NewHistoryRepository(db masterdata.DBTX) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Insert(ctx context.Context, rec *ImportRecord) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO import_history (batch_id, import_type, file_name, records_imported, status, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		rec.BatchID, rec.ImportType, rec.FileName, rec.RecordsImported, rec.Status, rec.Details,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// Trim evicts everything but the newest keep rows.
func (r *historyRepository) Trim(ctx context.Context, keep int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM import_history
		WHERE id NOT IN (
			SELECT id FROM import_history ORDER BY created_at DESC, id DESC LIMIT $1
		)`, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *historyRepository) List(ctx context.Context, page shared.Page) ([]ImportRecord, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM import_history`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, batch_id, import_type, file_name, records_imported, status, details, created_at
		FROM import_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.ImportType, &rec.FileName,
			&rec.RecordsImported, &rec.Status, &rec.Details, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, rec)
	}
	return list, total, rows.Err()
}
