package audit

import (
	"context"
	"log/slog"
	"time"

	"vetblood/pkg/domain"
)

// Publisher captures structured audit entries. Write paths call Emit inside
// their transaction and treat an error as fatal to the operation; read paths
// call EmitBestEffort, where a failed audit write is logged and swallowed.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// Emit synchronously appends an audit entry. Returns the store error.
func (p *Publisher) Emit(ctx context.Context, actorID domain.UserID, action string, details map[string]any) error {
	return p.store.Append(ctx, Entry{
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	})
}

// EmitBestEffort appends an audit entry, logging failures instead of
// propagating them. For view/list operations where losing an audit line
// must not fail the read.
func (p *Publisher) EmitBestEffort(ctx context.Context, actorID domain.UserID, action string, details map[string]any) {
	if err := p.Emit(ctx, actorID, action, details); err != nil {
		p.logger.WarnContext(ctx, "audit append failed",
			"action", action,
			"actor_id", actorID.String(),
			"error", err,
		)
	}
}

// List returns the audit trail for one actor.
func (p *Publisher) List(ctx context.Context, actorID domain.UserID) ([]Entry, error) {
	return p.store.ListByActor(ctx, actorID)
}
