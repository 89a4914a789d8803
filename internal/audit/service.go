// Package audit records invite-lifecycle and access-denial events. Recording
// failures are logged but never change the outcome of the request that
// triggered them.
package audit

import (
	"context"
	"strings"

	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/rs/zerolog"
)

type Event struct {
	WorkspaceID *string
	Event       models.AuditEvent
	Message     string
	Metadata    map[string]interface{}
}

type Recorder interface {
	Record(ctx context.Context, evt Event)
	InviteIssued(ctx context.Context, invite models.Invite)
	InviteAccepted(ctx context.Context, invite models.Invite, workspaceID string)
	QuotaExceeded(ctx context.Context, workspaceID, plan string, limit, current int)
	AccessDenied(ctx context.Context, credentialID, reason string)
	ListRecent(ctx context.Context, workspaceID string, limit int) ([]models.AuditRecord, error)
}

type recorder struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewRecorder(repo repository.AuditRepository, logger zerolog.Logger) Recorder {
	return &recorder{
		repo:   repo,
		logger: logger.With().Str("component", "audit_recorder").Logger(),
	}
}

func (r *recorder) Record(ctx context.Context, evt Event) {
	if evt.Event == "" {
		return
	}
	message := strings.TrimSpace(evt.Message)
	if message == "" {
		message = string(evt.Event)
	}
	_, err := r.repo.Create(ctx, repository.CreateAuditRecordParams{
		WorkspaceID: evt.WorkspaceID,
		Event:       evt.Event,
		Message:     message,
		Metadata:    evt.Metadata,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("event", string(evt.Event)).Msg("failed to persist audit record")
	}
}

func (r *recorder) InviteIssued(ctx context.Context, invite models.Invite) {
	r.Record(ctx, Event{
		WorkspaceID: invite.WorkspaceID,
		Event:       models.AuditInviteIssued,
		Message:     "invite issued for " + invite.Email,
		Metadata: map[string]interface{}{
			"invite_id":  invite.ID,
			"role":       string(invite.Role),
			"invited_by": invite.InvitedBy,
		},
	})
}

func (r *recorder) InviteAccepted(ctx context.Context, invite models.Invite, workspaceID string) {
	r.Record(ctx, Event{
		WorkspaceID: &workspaceID,
		Event:       models.AuditInviteAccepted,
		Message:     "invite accepted for " + invite.Email,
		Metadata: map[string]interface{}{
			"invite_id": invite.ID,
		},
	})
}

func (r *recorder) QuotaExceeded(ctx context.Context, workspaceID, plan string, limit, current int) {
	r.Record(ctx, Event{
		WorkspaceID: &workspaceID,
		Event:       models.AuditQuotaExceeded,
		Message:     "invite rejected: plan seat limit reached",
		Metadata: map[string]interface{}{
			"plan":    plan,
			"limit":   limit,
			"current": current,
		},
	})
}

func (r *recorder) AccessDenied(ctx context.Context, credentialID, reason string) {
	r.Record(ctx, Event{
		Event:   models.AuditAccessDenied,
		Message: "access denied: " + reason,
		Metadata: map[string]interface{}{
			"credential_id": credentialID,
		},
	})
}

func (r *recorder) ListRecent(ctx context.Context, workspaceID string, limit int) ([]models.AuditRecord, error) {
	return r.repo.ListRecent(ctx, workspaceID, limit)
}
