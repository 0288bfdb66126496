package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

// UseCase reads a user's tasks and derives dashboard statistics on demand.
// Nothing is cached between requests.
type UseCase struct {
	tasks  repository.TaskRepository
	tokens repository.TokenRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, tokens repository.TokenRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the reference time, for tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

func (uc *UseCase) Summary(ctx context.Context, userID string) (*Summary, error) {
	tasks, err := uc.tasks.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := ComputeSummary(tasks, uc.now())
	summary.GoogleCalendarConnected = uc.calendarConnected(ctx, userID)
	return &summary, nil
}

func (uc *UseCase) Activity(ctx context.Context, userID string) (*Activity, error) {
	tasks, err := uc.tasks.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity := ComputeActivity(tasks, uc.now())
	return &activity, nil
}

func (uc *UseCase) calendarConnected(ctx context.Context, userID string) bool {
	if uc.tokens == nil {
		return false
	}
	_, err := uc.tokens.Get(ctx, userID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Warn("calendar token lookup failed", zap.Error(err))
		}
		return false
	}
	return true
}
