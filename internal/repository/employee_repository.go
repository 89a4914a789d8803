package repository

import (
	"context"
	"database/sql"

	"github.com/replyhub/identity-api/internal/guard"
	"github.com/replyhub/identity-api/internal/models"
)

type CreateEmployeeParams struct {
	CredentialID  string
	Email         string
	FirstName     string
	LastName      string
	WorkspaceID   string
	InvitedByRole models.InvitedByRole
}

type EmployeeRepository interface {
	// CreateEmployee validates the workspace invariants, then inserts the
	// employee row and its email claim in one transaction.
	CreateEmployee(ctx context.Context, params CreateEmployeeParams) (models.Employee, error)
	GetEmployeeByCredentialID(ctx context.Context, credentialID string) (models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (models.Employee, error)
	CountActiveByWorkspace(ctx context.Context, workspaceID string) (int, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Employee, error)
}

type employeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, credential_id, email, first_name, last_name, workspace_id, invited_by_role, status, created_at, updated_at`

func (r *employeeRepository) CreateEmployee(ctx context.Context, params CreateEmployeeParams) (models.Employee, error) {
	employee := models.Employee{
		CredentialID:  params.CredentialID,
		Email:         params.Email,
		FirstName:     params.FirstName,
		LastName:      params.LastName,
		WorkspaceID:   params.WorkspaceID,
		InvitedByRole: params.InvitedByRole,
		Status:        models.EmployeeActive,
	}
	if err := guard.ValidateEmployeeWrite(employee); err != nil {
		return models.Employee{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Employee{}, err
	}
	defer tx.Rollback()

	const claim = `INSERT INTO staff.claimed_emails (email, kind) VALUES ($1, 'employee');`
	if _, err := tx.ExecContext(ctx, claim, employee.Email); err != nil {
		return models.Employee{}, err
	}

	const insert = `
		INSERT INTO staff.employees (credential_id, email, first_name, last_name, workspace_id, invited_by_role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + employeeColumns + `;
	`
	employee, err = scanEmployee(tx.QueryRowContext(ctx, insert,
		params.CredentialID,
		params.Email,
		params.FirstName,
		params.LastName,
		params.WorkspaceID,
		string(params.InvitedByRole),
		string(models.EmployeeActive),
	))
	if err != nil {
		return models.Employee{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Employee{}, err
	}
	return employee, nil
}

func (r *employeeRepository) GetEmployeeByCredentialID(ctx context.Context, credentialID string) (models.Employee, error) {
	const query = `
		SELECT ` + employeeColumns + `
		FROM staff.employees
		WHERE credential_id = $1;
	`
	return scanEmployee(r.db.QueryRowContext(ctx, query, credentialID))
}

func (r *employeeRepository) GetEmployeeByEmail(ctx context.Context, email string) (models.Employee, error) {
	const query = `
		SELECT ` + employeeColumns + `
		FROM staff.employees
		WHERE email = $1;
	`
	return scanEmployee(r.db.QueryRowContext(ctx, query, email))
}

func (r *employeeRepository) CountActiveByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM staff.employees
		WHERE workspace_id = $1 AND status = 'active';
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, workspaceID).Scan(&count)
	return count, err
}

func (r *employeeRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Employee, error) {
	const query = `
		SELECT ` + employeeColumns + `
		FROM staff.employees
		WHERE workspace_id = $1
		ORDER BY email;
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func scanEmployee(row rowScanner) (models.Employee, error) {
	var (
		employee      models.Employee
		invitedByRole string
		status        string
	)
	err := row.Scan(
		&employee.ID,
		&employee.CredentialID,
		&employee.Email,
		&employee.FirstName,
		&employee.LastName,
		&employee.WorkspaceID,
		&invitedByRole,
		&status,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		return models.Employee{}, err
	}
	employee.InvitedByRole = models.InvitedByRole(invitedByRole)
	employee.Status = models.EmployeeStatus(status)
	return employee, nil
}
