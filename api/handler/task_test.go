package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/progresssync/backend/api/transport"
	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
	taskUC "github.com/progresssync/backend/usecase/task"
)

type memTaskRepo struct {
	tasks map[string]*domain.Task
	seq   int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *memTaskRepo) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID == filter.UserID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *memTaskRepo) ListAll(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.List(ctx, repository.TaskFilter{UserID: userID})
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
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

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, userID, id string) error {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func newTaskFixture() (*TaskHandler, *memTaskRepo) {
	repo := newMemTaskRepo()
	return NewTaskHandler(taskUC.New(repo, nil, nil), nil, nil), repo
}

func postJSON(t *testing.T, userID string, payload interface{}) *fasthttp.RequestCtx {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-User-ID", userID)
	ctx.Request.SetBody(body)
	return &ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var envelope transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	return envelope
}

func TestCreateTaskBadDueDateRejected(t *testing.T) {
	h, repo := newTaskFixture()

	ctx := postJSON(t, "u1", transport.TaskCreateRequest{Title: "write report", DueDate: "next tuesday"})
	h.CreateTask(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeInvalid), decodeEnvelope(t, ctx).Code)
	assert.Empty(t, repo.tasks)
}

func TestCreateTaskAcceptsDateOnlyDueDate(t *testing.T) {
	h, repo := newTaskFixture()

	ctx := postJSON(t, "u1", transport.TaskCreateRequest{Title: "write report", DueDate: "2026-09-01"})
	h.CreateTask(ctx)

	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	require.Len(t, repo.tasks, 1)
	for _, task := range repo.tasks {
		require.NotNil(t, task.DueDate)
		assert.Equal(t, "2026-09-01", task.DueDate.Format("2006-01-02"))
	}
}

func TestCreateTaskWithoutDueDate(t *testing.T) {
	h, repo := newTaskFixture()

	ctx := postJSON(t, "u1", transport.TaskCreateRequest{Title: "write report"})
	h.CreateTask(ctx)

	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	require.Len(t, repo.tasks, 1)
	for _, task := range repo.tasks {
		assert.Nil(t, task.DueDate)
	}
}

func TestUpdateTaskBadDueDateRejected(t *testing.T) {
	h, repo := newTaskFixture()
	created, err := repo.Create(context.Background(), &domain.Task{UserID: "u1", Title: "write report"})
	require.NoError(t, err)

	bad := "soon"
	ctx := postJSON(t, "u1", transport.TaskUpdateRequest{DueDate: &bad})
	ctx.SetUserValue("id", created.ID)
	h.UpdateTask(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, string(domain.ErrCodeInvalid), decodeEnvelope(t, ctx).Code)
	assert.Nil(t, repo.tasks[created.ID].DueDate)
}

func TestUpdateTaskValidDueDateApplied(t *testing.T) {
	h, repo := newTaskFixture()
	created, err := repo.Create(context.Background(), &domain.Task{UserID: "u1", Title: "write report"})
	require.NoError(t, err)

	due := "2026-09-15T10:00:00Z"
	ctx := postJSON(t, "u1", transport.TaskUpdateRequest{DueDate: &due})
	ctx.SetUserValue("id", created.ID)
	h.UpdateTask(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.NotNil(t, repo.tasks[created.ID].DueDate)
	assert.Equal(t, due, repo.tasks[created.ID].DueDate.Format(time.RFC3339))
}

func TestTaskEndpointsRequireIdentity(t *testing.T) {
	h, _ := newTaskFixture()

	var ctx fasthttp.RequestCtx
	h.CreateTask(&ctx)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}
