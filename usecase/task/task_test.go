package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

type fakeTaskRepo struct {
	tasks map[string]*domain.Task
	seq   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID == filter.UserID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListAll(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.List(ctx, repository.TaskFilter{UserID: userID})
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.seq++
	if task.ID == "" {
		task.ID = fmt.Sprintf("task-%d", r.seq)
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	copied := *task
	r.tasks[task.ID] = &copied
	return task, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, userID, id string) error {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func ptrString(s string) *string { return &s }
func ptrBool(b bool) *bool { return &b }

func TestCreateTaskRequiresTitle(t *testing.T) {
	uc := New(newFakeTaskRepo(), nil, nil)

	_, err := uc.CreateTask(context.Background(), "u1", "   ", nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateTaskTrimsTitle(t *testing.T) {
	uc := New(newFakeTaskRepo(), nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "  write report  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "write report", created.Title)
	assert.Equal(t, "u1", created.UserID)
	assert.False(t, created.Completed)
	assert.Nil(t, created.CompletedAt)
}

func TestUpdateTaskStampsCompletedAt(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "write report", nil)
	require.NoError(t, err)

	updated, err := uc.UpdateTask(context.Background(), "u1", created.ID, Patch{Completed: ptrBool(true)})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)
	assert.WithinDuration(t, time.Now(), *updated.CompletedAt, time.Minute)
}

func TestUpdateTaskClearsCompletedAtOnReopen(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "write report", nil)
	require.NoError(t, err)

	_, err = uc.UpdateTask(context.Background(), "u1", created.ID, Patch{Completed: ptrBool(true)})
	require.NoError(t, err)

	reopened, err := uc.UpdateTask(context.Background(), "u1", created.ID, Patch{Completed: ptrBool(false)})
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
}

func TestUpdateTaskCompletedUnchangedKeepsStamp(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "write report", nil)
	require.NoError(t, err)

	done, err := uc.UpdateTask(context.Background(), "u1", created.ID, Patch{Completed: ptrBool(true)})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	stamp := *done.CompletedAt

	renamed, err := uc.UpdateTask(context.Background(), "u1", created.ID, Patch{Title: ptrString("write the report")})
	require.NoError(t, err)
	assert.Equal(t, "write the report", renamed.Title)
	require.NotNil(t, renamed.CompletedAt)
	assert.Equal(t, stamp, *renamed.CompletedAt)
}

func TestUpdateTaskRejectsEmptyTitle(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "write report", nil)
	require.NoError(t, err)

	_, err = uc.UpdateTask(context.Background(), "u1", created.ID, Patch{Title: ptrString("  ")})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUpdateTaskOtherUserLooksNotFound(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "write report", nil)
	require.NoError(t, err)

	_, err = uc.UpdateTask(context.Background(), "u2", created.ID, Patch{Completed: ptrBool(true)})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestDeleteTaskOwnerScoped(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, nil, nil)

	created, err := uc.CreateTask(context.Background(), "u1", "write report", nil)
	require.NoError(t, err)

	err = uc.DeleteTask(context.Background(), "u2", created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	require.NoError(t, uc.DeleteTask(context.Background(), "u1", created.ID))

	err = uc.DeleteTask(context.Background(), "u1", created.ID)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
