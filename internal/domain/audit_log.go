package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/encore/internal/domain/filter"
)

type AuditAction string

const (
	ActionRequestCreated       AuditAction = "request.created"
	ActionRequestUpdated       AuditAction = "request.updated"
	ActionRequestDeleted       AuditAction = "request.deleted"
	ActionQueueReordered       AuditAction = "queue.reordered"
	ActionParticipantRenamed   AuditAction = "participant.renamed"
	ActionParticipantSuspended AuditAction = "participant.suspended"
	ActionParticipantRestored  AuditAction = "participant.reinstated"
	ActionAccountCreated       AuditAction = "account.created"
	ActionNotificationRead     AuditAction = "notification.read"
)

// AuditLog is append-only.
type AuditLog struct {
	ID        string         `gorm:"type:VARCHAR(36);primaryKey" json:"id" bson:"_id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp" bson:"timestamp"`
	ActorID   string         `gorm:"type:VARCHAR(36);not null;index" json:"actorId" bson:"actor_id"`
	ActorName string         `gorm:"type:VARCHAR(100);not null" json:"actorName" bson:"actor_name"`
	Action    AuditAction    `gorm:"type:VARCHAR(64);not null;index" json:"action" bson:"action"`
	Details   map[string]any `gorm:"type:JSONB;serializer:json" json:"details,omitempty" bson:"details,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func NewAuditLog(actor Actor, action AuditAction, details map[string]any) *AuditLog {
	return &AuditLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ActorID:   actor.UID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
	}
}

func NewRequestCreatedLog(actor Actor, r *SongRequest) *AuditLog {
	return NewAuditLog(actor, ActionRequestCreated, map[string]any{
		"request_id": r.ID,
		"title":      r.SongTitle,
		"order":      r.Order,
	})
}

func NewRequestUpdatedLog(actor Actor, id string, patch SongRequestPatch) *AuditLog {
	return NewAuditLog(actor, ActionRequestUpdated, map[string]any{
		"request_id": id,
		"changes":    patch.Columns(),
	})
}

func NewRequestDeletedLog(actor Actor, r *SongRequest) *AuditLog {
	return NewAuditLog(actor, ActionRequestDeleted, map[string]any{
		"request_id": r.ID,
		"title":      r.SongTitle,
	})
}

func NewQueueReorderedLog(actor Actor, ids []string) *AuditLog {
	return NewAuditLog(actor, ActionQueueReordered, map[string]any{
		"sequence": ids,
		"count":    len(ids),
	})
}

func NewParticipantRenamedLog(actor Actor, oldName, newName string, requests int64) *AuditLog {
	return NewAuditLog(actor, ActionParticipantRenamed, map[string]any{
		"old_name":         oldName,
		"new_name":         newName,
		"requests_renamed": requests,
	})
}

func NewParticipantDisabledLog(actor Actor, p *Participant) *AuditLog {
	action := ActionParticipantRestored
	if p.Disabled {
		action = ActionParticipantSuspended
	}
	return NewAuditLog(actor, action, map[string]any{
		"participant_id":   p.ID,
		"participant_name": p.Name,
	})
}

type AuditLogRepository interface {
	Append(ctx context.Context, log *AuditLog) error
	// List returns one page, newest first unless the filter sorts otherwise.
	List(ctx context.Context, req filter.PaginationInputWithFilter) (int64, []AuditLog, error)
}
