package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/replyhub/identity-api/internal/models"
)

type CreateAuditRecordParams struct {
	WorkspaceID *string
	Event       models.AuditEvent
	Message     string
	Metadata    map[string]interface{}
}

type AuditRepository interface {
	Create(ctx context.Context, params CreateAuditRecordParams) (models.AuditRecord, error)
	ListRecent(ctx context.Context, workspaceID string, limit int) ([]models.AuditRecord, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, params CreateAuditRecordParams) (models.AuditRecord, error) {
	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return models.AuditRecord{}, err
	}

	const query = `
		INSERT INTO staff.audit_events (workspace_id, event, message, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, workspace_id, event, message, metadata, created_at;
	`
	return scanAuditRecord(r.db.QueryRowContext(ctx, query, params.WorkspaceID, string(params.Event), params.Message, payload))
}

func (r *auditRepository) ListRecent(ctx context.Context, workspaceID string, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `
		SELECT id, workspace_id, event, message, metadata, created_at
		FROM staff.audit_events
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AuditRecord
	for rows.Next() {
		record, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanAuditRecord(row rowScanner) (models.AuditRecord, error) {
	var (
		record      models.AuditRecord
		workspaceID sql.NullString
		event       string
		payload     []byte
	)
	err := row.Scan(&record.ID, &workspaceID, &event, &record.Message, &payload, &record.CreatedAt)
	if err != nil {
		return models.AuditRecord{}, err
	}
	record.Event = models.AuditEvent(event)
	if workspaceID.Valid {
		record.WorkspaceID = &workspaceID.String
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &record.Metadata); err != nil {
			return models.AuditRecord{}, err
		}
	}
	return record, nil
}
