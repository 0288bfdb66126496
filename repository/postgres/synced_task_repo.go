package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

type syncedTaskRepository struct {
	pool *pgxpool.Pool
}

// NewSyncedTaskRepository returns a Postgres-backed mirror of the external to-do service.
func NewSyncedTaskRepository(pool *pgxpool.Pool) repository.SyncedTaskRepository {
	return &syncedTaskRepository{pool: pool}
}

func (r *syncedTaskRepository) ListByUser(ctx context.Context, userID string) ([]domain.SyncedTask, error) {
	const query = `
	SELECT id, user_id, remote_id, content, completed, raw, synced_at
	FROM synced_tasks
	WHERE user_id = $1
	ORDER BY synced_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.SyncedTask
	for rows.Next() {
		var t domain.SyncedTask
		if err := rows.Scan(&t.ID, &t.UserID, &t.RemoteID, &t.Content, &t.Completed, &t.Raw, &t.SyncedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Replace swaps the user's mirror inside one transaction so a failed sync
// never leaves a half-written set behind.
func (r *syncedTaskRepository) Replace(ctx context.Context, userID string, tasks []domain.SyncedTask) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM synced_tasks WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const insert = `
	INSERT INTO synced_tasks (id, user_id, remote_id, content, completed, raw, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, err := tx.Exec(ctx, insert, t.ID, userID, t.RemoteID, t.Content, t.Completed, t.Raw); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *syncedTaskRepository) Save(ctx context.Context, task *domain.SyncedTask) error {
	if task == nil || task.UserID == "" || task.RemoteID == "" {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO synced_tasks (id, user_id, remote_id, content, completed, raw, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (user_id, remote_id) DO UPDATE
	SET content = EXCLUDED.content,
		completed = EXCLUDED.completed,
		raw = EXCLUDED.raw,
		synced_at = NOW()
	RETURNING synced_at
	`
	return r.pool.QueryRow(ctx, query,
		task.ID, task.UserID, task.RemoteID, task.Content, task.Completed, task.Raw,
	).Scan(&task.SyncedAt)
}

func (r *syncedTaskRepository) MarkCompleted(ctx context.Context, userID, remoteID string) error {
	const query = `
	UPDATE synced_tasks SET completed = TRUE, synced_at = NOW()
	WHERE user_id = $1 AND remote_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, userID, remoteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *syncedTaskRepository) DeleteByRemoteID(ctx context.Context, userID, remoteID string) error {
	const query = `DELETE FROM synced_tasks WHERE user_id = $1 AND remote_id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, remoteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
