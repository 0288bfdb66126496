package repository

import (
	"context"
	"time"

	"github.com/progresssync/backend/domain"
)

// TaskFilter narrows List results. DueFrom/DueTo bound the due date when both are set.
type TaskFilter struct {
	UserID  string
	DueFrom *time.Time
	DueTo   *time.Time
	Limit   int
	Offset  int
}

// TaskRepository is the document-store boundary for tasks. Every operation that
// targets a single record is scoped by owner as well as id.
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// ListAll returns every task the user owns, for aggregation.
	ListAll(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
}
