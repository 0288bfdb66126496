package repository

import (
	"context"

	"github.com/progresssync/backend/domain"
)

// SyncedTaskRepository persists the local mirror of the external to-do service.
type SyncedTaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.SyncedTask, error)
	// Replace atomically swaps the user's mirror for the given set.
	Replace(ctx context.Context, userID string, tasks []domain.SyncedTask) error
	Save(ctx context.Context, task *domain.SyncedTask) error
	MarkCompleted(ctx context.Context, userID, remoteID string) error
	DeleteByRemoteID(ctx context.Context, userID, remoteID string) error
}
