package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
	"github.com/progresssync/backend/usecase"
)

// Patch carries the fields of a task update; nil means "leave unchanged".
type Patch struct {
	Title     *string
	Completed *bool
	DueDate   *time.Time
}

type UseCase struct {
	tasks  repository.TaskRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

// CreateTask validates the title before any state is touched.
func (uc *UseCase) CreateTask(ctx context.Context, userID, title string, dueDate *time.Time) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}

	task := &domain.Task{
		UserID:  userID,
		Title:   title,
		DueDate: dueDate,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	return created, nil
}

// UpdateTask applies a partial update to a task the user owns. Flipping
// completed to true stamps CompletedAt; flipping it back clears the stamp.
func (uc *UseCase) UpdateTask(ctx context.Context, userID, id string, patch Patch) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "title must not be empty")
		}
		task.Title = title
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Completed != nil && *patch.Completed != task.Completed {
		task.Completed = *patch.Completed
		if task.Completed {
			completedAt := uc.now()
			task.CompletedAt = &completedAt
		} else {
			task.CompletedAt = nil
		}
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, err
		}
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, task) {
			return task, nil
		}
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	if err := uc.tasks.Delete(ctx, userID, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, &domain.Task{ID: id, UserID: userID}) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation))
	return true
}
