package usecase

import (
	"context"

	"github.com/progresssync/backend/domain"
)

// Buffered operation kinds.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the offline write buffer so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferUser(ctx context.Context, operation string, user *domain.User) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}
