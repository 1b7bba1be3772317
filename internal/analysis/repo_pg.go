package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO analyses (
	id, work_item_id, analysis_type, score, confidence, used_ai, model_used,
	processing_time_ms, insights, structured_data, error_message, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	insights, err := marshalJSONB(record.Insights)
	if err != nil {
		return err
	}
	structured, err := marshalJSONB(record.StructuredData)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.WorkItemID,
		string(record.AnalysisType),
		record.Score,
		record.Confidence,
		record.UsedAI,
		nullString(record.ModelUsed),
		record.ProcessingTimeMs,
		insights,
		structured,
		nullString(record.ErrorMessage),
		record.CreatedAt,
	)
	return err
}

// GetByID returns a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	const query = selectColumns + ` WHERE id = $1 LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return record, err
}

// ListByWorkItem returns records for a work item, newest first.
func (r *PGRepo) ListByWorkItem(ctx context.Context, workItemID string, limit, offset int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = selectColumns + `
 WHERE work_item_id = $1
 ORDER BY created_at DESC
 LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, workItemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

const selectColumns = `
SELECT id, work_item_id, analysis_type, score, confidence, used_ai, model_used,
       processing_time_ms, insights, structured_data, error_message, created_at
FROM analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var analysisType string
	var modelUsed sql.NullString
	var errorMessage sql.NullString
	var insights sql.NullString
	var structured sql.NullString

	err := row.Scan(
		&record.ID,
		&record.WorkItemID,
		&analysisType,
		&record.Score,
		&record.Confidence,
		&record.UsedAI,
		&modelUsed,
		&record.ProcessingTimeMs,
		&insights,
		&structured,
		&errorMessage,
		&record.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}

	record.AnalysisType = Type(analysisType)
	record.ModelUsed = modelUsed.String
	record.ErrorMessage = errorMessage.String
	if insights.Valid && insights.String != "" {
		if err := json.Unmarshal([]byte(insights.String), &record.Insights); err != nil {
			return Record{}, err
		}
	}
	if structured.Valid && structured.String != "" {
		if err := json.Unmarshal([]byte(structured.String), &record.StructuredData); err != nil {
			return Record{}, err
		}
	}
	return record, nil
}

func marshalJSONB(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
