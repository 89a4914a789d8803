package repository

import (
	"context"
	"database/sql"

	"github.com/replyhub/identity-api/internal/models"
)

type WorkspaceRepository interface {
	CreateWorkspace(ctx context.Context, name, plan string) (models.Workspace, error)
	GetWorkspaceByID(ctx context.Context, id string) (models.Workspace, error)
}

type workspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) CreateWorkspace(ctx context.Context, name, plan string) (models.Workspace, error) {
	const query = `
		INSERT INTO staff.workspaces (name, plan)
		VALUES ($1, $2)
		RETURNING id, name, plan, created_at, updated_at;
	`
	var ws models.Workspace
	err := r.db.QueryRowContext(ctx, query, name, plan).Scan(&ws.ID, &ws.Name, &ws.Plan, &ws.CreatedAt, &ws.UpdatedAt)
	return ws, err
}

func (r *workspaceRepository) GetWorkspaceByID(ctx context.Context, id string) (models.Workspace, error) {
	const query = `
		SELECT id, name, plan, created_at, updated_at
		FROM staff.workspaces
		WHERE id = $1;
	`
	var ws models.Workspace
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ws.ID, &ws.Name, &ws.Plan, &ws.CreatedAt, &ws.UpdatedAt)
	return ws, err
}
