package service

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/replyhub/identity-api/internal/audit"
	"github.com/replyhub/identity-api/internal/credential"
	"github.com/replyhub/identity-api/internal/guard"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
)

// fakeStore is an in-memory implementation of the repository interfaces. It
// honors the same contracts as the Postgres layer: sql.ErrNoRows for misses,
// repository.ErrDuplicate for unique-constraint violations, and the shared
// claimed-email index across identities and employees.
type fakeStore struct {
	mu         sync.Mutex
	nextID     int
	invites    map[string]models.Invite
	identities map[string]models.Identity
	employees  map[string]models.Employee
	workspaces map[string]models.Workspace
	claims     map[string]string
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		invites:    make(map[string]models.Invite),
		identities: make(map[string]models.Identity),
		employees:  make(map[string]models.Employee),
		workspaces: make(map[string]models.Workspace),
		claims:     make(map[string]string),
	}
	s.workspaces[models.PlatformWorkspaceID] = models.Workspace{
		ID:   models.PlatformWorkspaceID,
		Name: "platform",
		Plan: models.PlanScale,
	}
	return s
}

func (s *fakeStore) genID() string {
	s.nextID++
	return "id-" + strconv.Itoa(s.nextID)
}

func (s *fakeStore) addWorkspace(id, name, plan string) models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := models.Workspace{ID: id, Name: name, Plan: plan}
	s.workspaces[id] = ws
	return ws
}

func (s *fakeStore) addAdminIdentity(email string, role models.Role, workspaceID *string, credentialID *string) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := models.Identity{
		ID:           s.genID(),
		Email:        email,
		Role:         role,
		WorkspaceID:  workspaceID,
		CredentialID: credentialID,
	}
	s.identities[identity.ID] = identity
	s.claims[email] = "admin"
	return identity
}

func (s *fakeStore) addEmployee(e models.Employee) models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.genID()
	}
	if e.Status == "" {
		e.Status = models.EmployeeActive
	}
	s.employees[e.ID] = e
	s.claims[e.Email] = "employee"
	return e
}

// InviteRepository

func (s *fakeStore) CreateInvite(_ context.Context, invite models.Invite) (models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invites {
		if existing.Token == invite.Token {
			return models.Invite{}, repository.ErrDuplicate
		}
	}
	invite.ID = s.genID()
	invite.Status = models.InvitePending
	invite.CreatedAt = time.Now()
	s.invites[invite.ID] = invite
	return invite, nil
}

func (s *fakeStore) GetInviteByToken(_ context.Context, token string) (models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, invite := range s.invites {
		if invite.Token == token {
			return invite, nil
		}
	}
	return models.Invite{}, sql.ErrNoRows
}

func (s *fakeStore) FindActiveInviteByEmail(_ context.Context, email string) (models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, invite := range s.invites {
		if invite.Email == email {
			return invite, nil
		}
	}
	return models.Invite{}, sql.ErrNoRows
}

func (s *fakeStore) MarkInviteAccepted(_ context.Context, inviteID string) (models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.invites[inviteID]
	if !ok || invite.Status != models.InvitePending {
		return models.Invite{}, sql.ErrNoRows
	}
	now := time.Now()
	invite.Status = models.InviteAccepted
	invite.AcceptedAt = &now
	s.invites[inviteID] = invite
	return invite, nil
}

func (s *fakeStore) ListInvitesByWorkspace(_ context.Context, workspaceID string) ([]models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invite
	for _, invite := range s.invites {
		if invite.WorkspaceID != nil && *invite.WorkspaceID == workspaceID {
			out = append(out, invite)
		}
	}
	return out, nil
}

// IdentityRepository

func (s *fakeStore) GetIdentityByEmail(_ context.Context, email string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.Email == email {
			return identity, nil
		}
	}
	return models.Identity{}, sql.ErrNoRows
}

func (s *fakeStore) GetIdentityByCredentialID(_ context.Context, credentialID string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.CredentialID != nil && *identity.CredentialID == credentialID {
			return identity, nil
		}
	}
	return models.Identity{}, sql.ErrNoRows
}

func (s *fakeStore) CreateIdentity(_ context.Context, credentialID, email string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.Email == email {
			return models.Identity{}, repository.ErrDuplicate
		}
	}
	identity := models.Identity{
		ID:           s.genID(),
		Email:        email,
		CredentialID: &credentialID,
		Role:         models.RoleNone,
	}
	s.identities[identity.ID] = identity
	return identity, nil
}

func (s *fakeStore) AttachCredential(_ context.Context, identityID, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[identityID]
	if !ok || identity.CredentialID != nil {
		return sql.ErrNoRows
	}
	identity.CredentialID = &credentialID
	s.identities[identityID] = identity
	return nil
}

func (s *fakeStore) CreateAdminIdentity(_ context.Context, email string, role models.Role, workspaceID *string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, claimed := s.claims[email]; claimed {
		return models.Identity{}, repository.ErrDuplicate
	}
	identity := models.Identity{
		ID:          s.genID(),
		Email:       email,
		Role:        role,
		WorkspaceID: workspaceID,
	}
	s.identities[identity.ID] = identity
	s.claims[email] = "admin"
	return identity, nil
}

// EmployeeRepository

func (s *fakeStore) CreateEmployee(_ context.Context, params repository.CreateEmployeeParams) (models.Employee, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, claimed := s.claims[params.Email]; claimed {
		return models.Employee{}, repository.ErrDuplicate
	}
	for _, existing := range s.employees {
		if existing.CredentialID == params.CredentialID || existing.Email == params.Email {
			return models.Employee{}, repository.ErrDuplicate
		}
	}
	employee.ID = s.genID()
	s.employees[employee.ID] = employee
	s.claims[params.Email] = "employee"
	return employee, nil
}

func (s *fakeStore) GetEmployeeByCredentialID(_ context.Context, credentialID string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, employee := range s.employees {
		if employee.CredentialID == credentialID {
			return employee, nil
		}
	}
	return models.Employee{}, sql.ErrNoRows
}

func (s *fakeStore) GetEmployeeByEmail(_ context.Context, email string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, employee := range s.employees {
		if employee.Email == email {
			return employee, nil
		}
	}
	return models.Employee{}, sql.ErrNoRows
}

func (s *fakeStore) CountActiveByWorkspace(_ context.Context, workspaceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, employee := range s.employees {
		if employee.WorkspaceID == workspaceID && employee.Status == models.EmployeeActive {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) ListByWorkspace(_ context.Context, workspaceID string) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Employee
	for _, employee := range s.employees {
		if employee.WorkspaceID == workspaceID {
			out = append(out, employee)
		}
	}
	return out, nil
}

// WorkspaceRepository

func (s *fakeStore) CreateWorkspace(_ context.Context, name, plan string) (models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ws := range s.workspaces {
		if ws.Name == name {
			return models.Workspace{}, repository.ErrDuplicate
		}
	}
	ws := models.Workspace{ID: s.genID(), Name: name, Plan: plan}
	s.workspaces[ws.ID] = ws
	return ws, nil
}

func (s *fakeStore) GetWorkspaceByID(_ context.Context, id string) (models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return models.Workspace{}, sql.ErrNoRows
	}
	return ws, nil
}

// recordingAudit captures audit events without persistence.
type recordingAudit struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (r *recordingAudit) Record(_ context.Context, evt audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt.Event)
}

func (r *recordingAudit) InviteIssued(ctx context.Context, invite models.Invite) {
	r.Record(ctx, audit.Event{Event: models.AuditInviteIssued})
}

func (r *recordingAudit) InviteAccepted(ctx context.Context, invite models.Invite, workspaceID string) {
	r.Record(ctx, audit.Event{Event: models.AuditInviteAccepted})
}

func (r *recordingAudit) QuotaExceeded(ctx context.Context, workspaceID, plan string, limit, current int) {
	r.Record(ctx, audit.Event{Event: models.AuditQuotaExceeded})
}

func (r *recordingAudit) AccessDenied(ctx context.Context, credentialID, reason string) {
	r.Record(ctx, audit.Event{Event: models.AuditAccessDenied})
}

func (r *recordingAudit) ListRecent(_ context.Context, _ string, _ int) ([]models.AuditRecord, error) {
	return nil, nil
}

func (r *recordingAudit) has(event models.AuditEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// countingProvider wraps a credential provider and counts creations.
type countingProvider struct {
	inner   credential.Provider
	mu      sync.Mutex
	creates int
}

func (p *countingProvider) CreateCredential(ctx context.Context, email, password string) (string, error) {
	p.mu.Lock()
	p.creates++
	p.mu.Unlock()
	return p.inner.CreateCredential(ctx, email, password)
}

func (p *countingProvider) GetCredential(ctx context.Context, id string) (credential.Profile, error) {
	return p.inner.GetCredential(ctx, id)
}
