package audit

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists audit entries. Append-only by contract.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByActor(ctx context.Context, actorID domain.UserID) ([]Entry, error)
}
