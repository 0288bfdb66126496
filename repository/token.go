package repository

import (
	"context"

	"github.com/progresssync/backend/domain"
)

// TokenRepository caches per-user OAuth credentials for the calendar service.
type TokenRepository interface {
	Get(ctx context.Context, userID string) (*domain.CalendarToken, error)
	Save(ctx context.Context, token *domain.CalendarToken) error
	Delete(ctx context.Context, userID string) error
}
