package sync

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/progresssync/backend/domain"
	"github.com/progresssync/backend/repository"
)

// RemoteTask is one task as reported by the external to-do service.
type RemoteTask struct {
	ID        string
	Content   string
	Completed bool
	Raw       json.RawMessage
}

// RemoteClient is the REST boundary to the external to-do service.
type RemoteClient interface {
	ListTasks(ctx context.Context, token string) ([]RemoteTask, error)
	CreateTask(ctx context.Context, token, content string) (*RemoteTask, error)
	CloseTask(ctx context.Context, token, id string) error
	DeleteTask(ctx context.Context, token, id string) error
}

// UseCase mirrors the user's remote tasks locally. Every operation runs
// remote-first: the mirror is only touched after the remote call succeeded,
// so an unreachable upstream never loses local state.
type UseCase struct {
	users        repository.UserRepository
	mirror       repository.SyncedTaskRepository
	remote       RemoteClient
	defaultToken string
	logger       *zap.Logger
}

func New(
	users repository.UserRepository,
	mirror repository.SyncedTaskRepository,
	remote RemoteClient,
	defaultToken string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:        users,
		mirror:       mirror,
		remote:       remote,
		defaultToken: defaultToken,
		logger:       logger,
	}
}

// Sync fetches the remote task list and replaces the user's mirror with it.
func (uc *UseCase) Sync(ctx context.Context, userID string) ([]domain.SyncedTask, error) {
	token, err := uc.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	remoteTasks, err := uc.remote.ListTasks(ctx, token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "todoist fetch failed", err)
	}

	mirrored := make([]domain.SyncedTask, 0, len(remoteTasks))
	for _, rt := range remoteTasks {
		mirrored = append(mirrored, domain.SyncedTask{
			UserID:    userID,
			RemoteID:  rt.ID,
			Content:   rt.Content,
			Completed: rt.Completed,
			Raw:       rt.Raw,
		})
	}

	if err := uc.mirror.Replace(ctx, userID, mirrored); err != nil {
		return nil, err
	}

	uc.logger.Info("todoist mirror refreshed",
		zap.String("user_id", userID),
		zap.Int("tasks", len(mirrored)))
	return mirrored, nil
}

// ListMirror returns the locally mirrored tasks without touching the remote.
func (uc *UseCase) ListMirror(ctx context.Context, userID string) ([]domain.SyncedTask, error) {
	return uc.mirror.ListByUser(ctx, userID)
}

// CreateRemote adds the task upstream, then records it in the mirror.
func (uc *UseCase) CreateRemote(ctx context.Context, userID, content string) (*domain.SyncedTask, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "content is required")
	}

	token, err := uc.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	created, err := uc.remote.CreateTask(ctx, token, content)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "todoist create failed", err)
	}

	mirrored := &domain.SyncedTask{
		UserID:    userID,
		RemoteID:  created.ID,
		Content:   created.Content,
		Completed: created.Completed,
		Raw:       created.Raw,
	}
	if err := uc.mirror.Save(ctx, mirrored); err != nil {
		return nil, err
	}
	return mirrored, nil
}

// CloseRemote completes the task upstream, then updates the mirror.
func (uc *UseCase) CloseRemote(ctx context.Context, userID, remoteID string) error {
	token, err := uc.token(ctx, userID)
	if err != nil {
		return err
	}

	if err := uc.remote.CloseTask(ctx, token, remoteID); err != nil {
		return domain.WrapError(domain.ErrCodeUpstream, "todoist close failed", err)
	}

	if err := uc.mirror.MarkCompleted(ctx, userID, remoteID); err != nil {
		// The remote op succeeded; a missing mirror row just means the user
		// never synced since the task appeared.
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// DeleteRemote removes the task upstream, then drops it from the mirror.
func (uc *UseCase) DeleteRemote(ctx context.Context, userID, remoteID string) error {
	token, err := uc.token(ctx, userID)
	if err != nil {
		return err
	}

	if err := uc.remote.DeleteTask(ctx, token, remoteID); err != nil {
		return domain.WrapError(domain.ErrCodeUpstream, "todoist delete failed", err)
	}

	if err := uc.mirror.DeleteByRemoteID(ctx, userID, remoteID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) token(ctx context.Context, userID string) (string, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.TodoistToken != "" {
		return user.TodoistToken, nil
	}
	if uc.defaultToken != "" {
		return uc.defaultToken, nil
	}
	return "", domain.NewError(domain.ErrCodeInvalid, "no todoist token configured for this account")
}
